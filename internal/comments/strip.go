// Package comments removes C-family comments from source text.
package comments

import (
	"bytes"
	"strings"
)

// Strip removes // line comments and /* */ block comments from text.
// String literals ("..."), character literals ('...') and Go raw strings (`...`) are kept intact.
// Line breaks inside removed block comments are kept so line numbering of the remaining code is unchanged.
func Strip(text string) string {
	out := make([]byte, 0, len(text))

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			end := skipQuoted(text, i, c)
			out = append(out, text[i:end]...)
			i = end
		case c == '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return string(append(out, text[i:]...))
			}
			out = append(out, text[i:i+end+2]...)
			i += end + 2
		case strings.HasPrefix(text[i:], "//"):
			out = bytes.TrimRight(out, " \t")
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				return string(out)
			}
			if end > 0 && text[i+end-1] == '\r' {
				end--
			}
			i += end
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			var body string
			if end < 0 {
				body = text[i:]
				i = len(text)
			} else {
				body = text[i : i+end+4]
				i += end + 4
			}
			for n := strings.Count(body, "\n"); n > 0; n-- {
				out = append(out, '\n')
			}
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipQuoted returns the index just past the literal starting at text[start].
// An unterminated literal runs to the end of the line.
func skipQuoted(text string, start int, quote byte) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(text)
}
