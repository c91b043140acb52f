package ic

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

const defaultEncoding = "utf8"

var ErrUnknownEncoding = errors.New("unknown source encoding")

// Node-style names first, then anything the IANA index knows.
var encodingAliases = map[string]encoding.Encoding{
	"utf8":    unicode.UTF8,
	"utf-8":   unicode.UTF8,
	"latin1":  charmap.ISO8859_1,
	"binary":  charmap.ISO8859_1,
	"ascii":   charmap.Windows1252,
	"utf16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"ucs2":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"ucs-2":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = defaultEncoding
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := encodingAliases[key]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

func decodeSource(content []byte, encodingName string) (string, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		return string(content), nil
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("error decoding source as %s: %w", encodingName, err)
	}
	return string(decoded), nil
}

// ReadSource reads the stylesheet at path and decodes it to a string.
func ReadSource(path, encodingName string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading source %s: %w", path, err)
	}
	return decodeSource(content, encodingName)
}

func (c *Config) readSource() (string, error) {
	return ReadSource(c.Source, c.Encoding)
}
