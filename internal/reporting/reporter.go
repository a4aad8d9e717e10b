// Package reporting renders the engine's Diagnostics to an output
// stream in one of the formats spec.md §8 names, grounded on the
// teacher's pkg/reporting Reporter interface and New(format, output)
// factory shape.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
)

// Reporter writes a batch of diagnostics for one file, then another
// batch for the next, until Close finalizes the report.
type Reporter interface {
	// WriteFile reports every diagnostic found for one analyzed file.
	// The reporters take the file name from each diagnostic's own File
	// field, so a file with no diagnostics writes nothing.
	WriteFile(filename string, diagnostics []diagnostic.Diagnostic) error
	// Close finalizes the report (e.g. emitting the closing JSON
	// brackets) and closes the underlying writer if New opened it.
	Close() error
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// New creates a Reporter for format, writing to outputPath ("" or
// "stdout" writes to standard output instead of a file).
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"
	if isStdout {
		writer = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("creating output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "pretty", "":
		return newPrettyReporter(writer), nil
	case "json":
		return newJSONReporter(writer), nil
	case "ndjson":
		return newNDJSONReporter(writer), nil
	case "sarif":
		return newSARIFReporter(writer), nil
	default:
		writer.Close()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
