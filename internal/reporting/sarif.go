package reporting

import (
	"io"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
)

// sarifLog mirrors the small slice of the SARIF 2.1.0 schema this
// reporter emits, grounded on the shape the teacher's deleted
// sarif_reporter.go produced for its own ResultEnvelope type, adapted
// here to the Diagnostic model.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name            string      `json:"name"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion            `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// sarifReporter accumulates diagnostics across every file and writes
// a single SARIF log on Close, since SARIF has no meaningful
// streaming/incremental form.
type sarifReporter struct {
	w         io.WriteCloser
	all       []diagnostic.Diagnostic
	ruleNames map[string]string
}

func newSARIFReporter(w io.WriteCloser) *sarifReporter {
	return &sarifReporter{w: w, ruleNames: map[string]string{}}
}

func (r *sarifReporter) WriteFile(filename string, diagnostics []diagnostic.Diagnostic) error {
	for _, d := range diagnostics {
		r.ruleNames[d.RuleID] = d.RuleName
	}
	r.all = append(r.all, diagnostics...)
	return nil
}

func sarifLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.Error:
		return "error"
	case diagnostic.Warning:
		return "warning"
	default:
		return "note"
	}
}

func (r *sarifReporter) Close() error {
	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{Name: "kaizen"}},
		}},
	}
	for id, name := range r.ruleNames {
		log.Runs[0].Tool.Driver.Rules = append(log.Runs[0].Tool.Driver.Rules, sarifRule{ID: id, Name: name})
	}
	for _, d := range r.all {
		log.Runs[0].Results = append(log.Runs[0].Results, sarifResult{
			RuleID:  d.RuleID,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: d.File},
					Region: sarifRegion{
						StartLine:   d.Range.Start.Line,
						StartColumn: d.Range.Start.Column,
						EndLine:     d.Range.End.Line,
						EndColumn:   d.Range.End.Column,
					},
				},
			}},
		})
	}

	enc := jsonAPI.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		r.w.Close()
		return err
	}
	return r.w.Close()
}
