package preprocessor

import "strings"

// TextContainer is a read cursor over the lines of one source file.
// Clones share the line slice and carry their own cursor.
type TextContainer struct {
	path            string
	lines           []string
	endsWithNewline bool
	newline         string
	next            int
	last            int
}

// NewTextContainer splits text into lines. Both "\n" and "\r\n" line endings are accepted;
// the style of the first line break is used when the text is written back.
func NewTextContainer(path, text string) *TextContainer {
	c := &TextContainer{path: path, newline: "\n", last: -1}
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		c.newline = "\r\n"
	}
	if text == "" {
		return c
	}
	c.endsWithNewline = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	c.lines = strings.Split(text, "\n")
	for i, l := range c.lines {
		c.lines[i] = strings.TrimSuffix(l, "\r")
	}
	return c
}

// Path returns the file path.
func (c *TextContainer) Path() string { return c.path }

// Len returns the number of lines.
func (c *TextContainer) Len() int { return len(c.lines) }

// Newline returns the line break sequence of the file.
func (c *TextContainer) Newline() string { return c.newline }

// EndsWithNewline reports whether the last line was terminated by a line break.
func (c *TextContainer) EndsWithNewline() bool { return c.endsWithNewline }

// NextLine returns the next line, or false when the cursor is past the end.
func (c *TextContainer) NextLine() (string, bool) {
	if c.next >= len(c.lines) {
		return "", false
	}
	c.last = c.next
	c.next++
	return c.lines[c.last], true
}

// LastIndex returns the 0-indexed position of the last line read, -1 before the first read.
func (c *TextContainer) LastIndex() int { return c.last }

// NextIndex returns the position of the line NextLine will return.
func (c *TextContainer) NextIndex() int { return c.next }

// SetNextIndex moves the cursor, clamped to [0, Len()].
func (c *TextContainer) SetNextIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(c.lines) {
		i = len(c.lines)
	}
	c.next = i
}

// LastLineHasBreak reports whether the line last read is followed by a line break in the source.
func (c *TextContainer) LastLineHasBreak() bool {
	return c.last < len(c.lines)-1 || c.endsWithNewline
}

// Rewound returns a clone positioned at the first line.
func (c *TextContainer) Rewound() *TextContainer {
	clone := *c
	clone.next = 0
	clone.last = -1
	return &clone
}
