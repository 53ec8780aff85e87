package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatNumber(tt.input))
	}
}

func TestFormatSignedNumber(t *testing.T) {
	assert.Equal(t, "+1,000", formatSignedNumber(1000))
	assert.Equal(t, "-50", formatSignedNumber(-50))
	assert.Equal(t, "0", formatSignedNumber(0))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
}

func TestFormatTable(t *testing.T) {
	table := formatTable([]string{"ID", "Name"}, [][]string{{"1", "alice"}, {"22", "bo"}})

	expected := "+----+-------+\n" +
		"| ID | Name  |\n" +
		"+----+-------+\n" +
		"| 1  | alice |\n" +
		"| 22 | bo    |\n" +
		"+----+-------+"
	assert.Equal(t, expected, table)
	assert.Empty(t, formatTable([]string{"ID"}, nil))
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("1,500")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), amount)

	amount, err = parseAmount("-20")
	require.NoError(t, err)
	assert.Equal(t, int64(-20), amount)

	_, err = parseAmount("lots")
	assert.Error(t, err)
}

func TestParseWagerDefinition(t *testing.T) {
	title, options := parseWagerDefinition("Will it rain? | Yes | No |  ")
	assert.Equal(t, "Will it rain?", title)
	assert.Equal(t, []string{"Yes", "No"}, options)

	title, options = parseWagerDefinition("No options here")
	assert.Equal(t, "No options here", title)
	assert.Empty(t, options)
}
