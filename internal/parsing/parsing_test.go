package parsing_test

import (
	"context"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/parsing"
)

func TestLanguageForExt(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		ext      string
		expected parsing.Language
	}{
		{".js", parsing.JavaScript},
		{".jsx", parsing.JSX},
		{".ts", parsing.TypeScript},
		{".tsx", parsing.TSX},
		{".unknown", parsing.JavaScript},
	}
	for _, tc := range testCases {
		tt := tc
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, parsing.LanguageForExt(tt.ext))
		})
	}
}

func TestParseEmptySourceIsNotFatal(t *testing.T) {
	t.Parallel()
	pf, err := parsing.Parse(context.Background(), "empty.js", parsing.JavaScript, []byte(""))
	require.NoError(t, err)
	defer pf.Close()
	assert.False(t, pf.HasFatalError())
}

// FuzzParse feeds the tree-sitter-backed parser arbitrary byte strings
// generated through go-fuzz-headers' structured consumer, the same
// defensive-skip-on-GenerateString-failure idiom the teacher uses for
// its own protocol-adapter fuzz target. Parse must never panic no
// matter how malformed the source is.
func FuzzParse(f *testing.F) {
	f.Add([]byte("var x = 1;"))
	f.Add([]byte("function f( { [[["))
	f.Fuzz(func(t *testing.T, data []byte) {
		fuzzConsumer := fuzz.NewConsumer(data)
		source, err := fuzzConsumer.GetString()
		if err != nil {
			return
		}

		pf, err := parsing.Parse(context.Background(), "fuzz.js", parsing.JavaScript, []byte(source))
		if err != nil {
			return
		}
		defer pf.Close()
	})
}
