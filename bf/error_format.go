package bf

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders the source line holding pos with a caret under the
// offending character. The line is found from pos.Offset, a character offset,
// and tabs before the caret are echoed so it stays aligned.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	runes := []rune(source)
	offset := min(max(pos.Offset, 0), len(runes))

	start := offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	line := runes[start:end]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	column := min(offset-start, len(line))
	caretPad := make([]rune, column)
	for i, r := range line[:column] {
		if r == '\t' {
			caretPad[i] = '\t'
		} else {
			caretPad[i] = ' '
		}
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column+1,
		lineLabel,
		string(line),
		gutterPad,
		string(caretPad),
	)
}
