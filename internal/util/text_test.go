package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 5, DisplayWidth("hello"))
	assert.Equal(t, 6, DisplayWidth("日本語"))
	assert.Equal(t, 4, DisplayWidth("ａbc"))
	assert.Equal(t, 1, DisplayWidth("│"))
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "日…", Truncate("日本語", 4))
	assert.Equal(t, "", Truncate("hello", 0))

	assert.Equal(t, "ab---", PadRight("ab", 5, '-'))
	assert.Equal(t, "日本 ", PadRight("日本", 5, ' '))
	assert.Equal(t, 5, DisplayWidth(PadRight("日本語です", 5, ' ')))
}

func TestBlankAndLines(t *testing.T) {
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" x "))
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\r\nb\n"))
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\n b\t\tc "))
}
