package semantic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/semantic"
)

func mustParse(t *testing.T, source string) *parsing.ParsedFile {
	t.Helper()
	file, err := parsing.Parse(context.Background(), "test.js", parsing.JavaScript, []byte(source))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file
}

func findSymbol(art *semantic.Artifacts, name string) (semantic.Symbol, bool) {
	for _, s := range art.Symbols.All() {
		if s.Name == name {
			return s, true
		}
	}
	return semantic.Symbol{}, false
}

func TestBuildTracksReadsAndWrites(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `function f() {
  let used = 1;
  let unused = 2;
  console.log(used);
}`)
	art := semantic.Build(file, semantic.DefaultDisposableCatalog())

	used, ok := findSymbol(art, "used")
	require.True(t, ok)
	assert.Greater(t, used.Reads, 0)

	unused, ok := findSymbol(art, "unused")
	require.True(t, ok)
	assert.Equal(t, 0, unused.Reads)
}

func TestBuildProducesOneCFGPerFunction(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `function a() { return 1; }
function b() { return 2; }`)
	art := semantic.Build(file, semantic.DefaultDisposableCatalog())

	assert.Len(t, art.CFGs, 2)
}

func TestBuildMarksImportSymbolKind(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `import { readFile } from "fs";`)
	art := semantic.Build(file, semantic.DefaultDisposableCatalog())

	sym, ok := findSymbol(art, "readFile")
	require.True(t, ok)
	assert.Equal(t, semantic.SymImport, sym.Kind)
	assert.Equal(t, 0, sym.Reads)
}
