package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/engine"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/tier"
)

type memorySource struct {
	name    string
	content string
	fail    bool
}

func (m memorySource) Filename() string { return m.name }

func (m memorySource) Parse(ctx context.Context) (*parsing.ParsedFile, error) {
	if m.fail {
		return nil, assert.AnError
	}
	return parsing.Parse(ctx, m.name, parsing.JavaScript, []byte(m.content))
}

func TestDriverRunPreservesOrderAndIsolatesFailures(t *testing.T) {
	defer goleak.VerifyNone(t)
	eng := engine.New()
	driver := engine.NewDriver(eng, config.Default(), tier.Free, 2)

	sources := []engine.Source{
		memorySource{name: "a.js", content: "var a = 1;"},
		memorySource{name: "b.js", fail: true},
		memorySource{name: "c.js", content: "var c = 1;"},
	}

	results := driver.Run(context.Background(), sources)
	require.Len(t, results, 3)

	assert.Equal(t, "a.js", results[0].Filename)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, "b.js", results[1].Filename)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "c.js", results[2].Filename)
	assert.NoError(t, results[2].Err)
}
