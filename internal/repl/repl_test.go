package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/compiler"
)

func TestStart(t *testing.T) {
	in := strings.NewReader("var a = 2+2; var b = 2+2;\n\na: for(;;) {}\n")
	var out bytes.Buffer

	require.NoError(t, Start(in, &out, compiler.Options{Compact: true}))

	text := out.String()
	assert.Contains(t, text, PROMPT+"var a=4;var b=4;\n")
	assert.Contains(t, text, "E0101")
	assert.Equal(t, 4, strings.Count(text, PROMPT))
}
