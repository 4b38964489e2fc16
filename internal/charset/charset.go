// Package charset resolves IANA charset names and converts between them and UTF-8.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/tacogips/cpre/internal/logger"
)

// Default is the charset used when none is configured.
const Default = "UTF-8"

// Codec decodes source bytes to text and encodes text to destination bytes.
type Codec struct {
	name string
	enc  encoding.Encoding
}

// Lookup returns the codec for an IANA charset name or alias (case-insensitive).
func Lookup(name string) (*Codec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = Default
	}
	if strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return &Codec{name: Default, enc: unicode.UTF8}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	logger.Debug("[charset] resolved %q as %s", name, canonical)
	return &Codec{name: canonical, enc: enc}, nil
}

// MustLookup is like Lookup but panics on failure. Intended for well-known names.
func MustLookup(name string) *Codec {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the canonical charset name.
func (c *Codec) Name() string {
	return c.name
}

// Decode converts bytes in the codec's charset to a UTF-8 string.
func (c *Codec) Decode(data []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}
	return string(out), nil
}

// Encode converts a UTF-8 string to bytes in the codec's charset.
// Characters that cannot be represented are an error.
func (c *Codec) Encode(text string) ([]byte, error) {
	out, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return out, nil
}
