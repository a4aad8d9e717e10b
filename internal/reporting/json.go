package reporting

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonReporter accumulates every diagnostic and emits one JSON array
// on Close, matching editor/CI tools that expect a single parseable
// document rather than a stream.
type jsonReporter struct {
	w   io.WriteCloser
	all []diagnostic.Diagnostic
}

func newJSONReporter(w io.WriteCloser) *jsonReporter { return &jsonReporter{w: w} }

func (r *jsonReporter) WriteFile(filename string, diagnostics []diagnostic.Diagnostic) error {
	r.all = append(r.all, diagnostics...)
	return nil
}

func (r *jsonReporter) Close() error {
	enc := jsonAPI.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.all); err != nil {
		r.w.Close()
		return err
	}
	return r.w.Close()
}

// ndjsonReporter emits one JSON object per diagnostic, immediately as
// each file's results arrive, matching the newline-delimited streaming
// convention watch-mode consumers expect.
type ndjsonReporter struct {
	w   io.WriteCloser
	enc *jsoniter.Encoder
}

func newNDJSONReporter(w io.WriteCloser) *ndjsonReporter {
	return &ndjsonReporter{w: w, enc: jsonAPI.NewEncoder(w)}
}

func (r *ndjsonReporter) WriteFile(filename string, diagnostics []diagnostic.Diagnostic) error {
	for _, d := range diagnostics {
		if err := r.enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

func (r *ndjsonReporter) Close() error { return r.w.Close() }
