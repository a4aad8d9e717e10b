package suppress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kzn-tools/kaizen/internal/suppress"
)

func TestDisableLine(t *testing.T) {
	t.Parallel()
	source := []byte("const x = eval(y); // kaizen-disable-line Q034\n")
	idx := suppress.Build(source)

	assert.True(t, idx.IsSuppressed(1, "Q034", "no-dynamic-eval"))
	assert.False(t, idx.IsSuppressed(1, "Q032", "no-console"))
	assert.False(t, idx.IsSuppressed(2, "Q034", "no-dynamic-eval"))
}

func TestDisableLineAllRules(t *testing.T) {
	t.Parallel()
	source := []byte("const x = eval(y); // kaizen-disable-line\n")
	idx := suppress.Build(source)

	assert.True(t, idx.IsSuppressed(1, "Q034", "no-dynamic-eval"))
	assert.True(t, idx.IsSuppressed(1, "S999", "anything"))
}

func TestDisableNextLine(t *testing.T) {
	t.Parallel()
	source := []byte("// kaizen-disable-next-line Q034\nconst x = eval(y);\n")
	idx := suppress.Build(source)

	assert.True(t, idx.IsSuppressed(2, "Q034", "no-dynamic-eval"))
	assert.False(t, idx.IsSuppressed(1, "Q034", "no-dynamic-eval"))
}

func TestDisableNextLineSkipsBlankLines(t *testing.T) {
	t.Parallel()
	source := []byte("// kaizen-disable-next-line Q034\n\n\nconst x = eval(y);\n")
	idx := suppress.Build(source)

	assert.True(t, idx.IsSuppressed(4, "Q034", "no-dynamic-eval"))
}

func TestMultipleRuleIDs(t *testing.T) {
	t.Parallel()
	source := []byte("x(); // kaizen-disable-line: Q001, Q002\n")
	idx := suppress.Build(source)

	assert.True(t, idx.IsSuppressed(1, "Q001", ""))
	assert.True(t, idx.IsSuppressed(1, "Q002", ""))
	assert.False(t, idx.IsSuppressed(1, "Q003", ""))
}

func TestEmptyIndex(t *testing.T) {
	t.Parallel()
	idx := suppress.Build([]byte("const x = 1;\n"))
	assert.True(t, idx.Empty())
	assert.False(t, idx.IsSuppressed(1, "Q001", ""))
}
