package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// formatNumber formats a number with thousands separators
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}

	str := strconv.FormatInt(n, 10)
	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// formatSignedNumber formats a number with sign and thousands separators
func formatSignedNumber(n int64) string {
	if n > 0 {
		return "+" + formatNumber(n)
	}
	return formatNumber(n)
}

// truncateString truncates a string to a maximum number of runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// padRight pads a string to the right with spaces
func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// formatTable formats data as a simple ASCII table
func formatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 || len(rows) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	separator := "+"
	for _, width := range colWidths {
		separator += strings.Repeat("-", width+2) + "+"
	}

	var result strings.Builder
	result.WriteString(separator + "\n")
	result.WriteString("|")
	for i, header := range headers {
		result.WriteString(" " + padRight(header, colWidths[i]) + " |")
	}
	result.WriteString("\n" + separator + "\n")

	for _, row := range rows {
		result.WriteString("|")
		for i, cell := range row {
			if i < len(colWidths) {
				result.WriteString(" " + padRight(cell, colWidths[i]) + " |")
			}
		}
		result.WriteString("\n")
	}
	result.WriteString(separator)

	return result.String()
}

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, value)
	}
	return id, nil
}

func parseAmount(value string) (int64, error) {
	amount, err := strconv.ParseInt(strings.ReplaceAll(value, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", value)
	}
	return amount, nil
}
