package ic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeSource(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		content  []byte
		want     string
	}{
		{"DefaultIsUTF8", "", []byte("a { content: \"é\"; }"), "a { content: \"é\"; }"},
		{"UTF8Alias", "utf-8", []byte("ü"), "ü"},
		{"Latin1", "latin1", []byte{'a', 0xe9}, "aé"},
		{"Binary", "binary", []byte{0xfc}, "ü"},
		{"CaseInsensitive", "LATIN1", []byte{0xe9}, "é"},
		{"UTF16LE", "utf16le", []byte{'a', 0, 'b', 0}, "ab"},
		{"UCS2", "ucs2", []byte{'@', 0}, "@"},
		{"IANAName", "ISO-8859-15", []byte{0xa4}, "€"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSource(tt.content, tt.encoding)
			if err != nil {
				t.Fatalf("decodeSource() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decodeSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeSourceUnknownEncoding(t *testing.T) {
	_, err := decodeSource([]byte("x"), "klingon-8")
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("decodeSource() error = %v, want ErrUnknownEncoding", err)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.css")
	if err := os.WriteFile(path, []byte{'.', 'c', 0xe9, '{', '}'}, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSource(path, "latin1")
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if got != ".cé{}" {
		t.Errorf("ReadSource() = %q", got)
	}

	if _, err := ReadSource(filepath.Join(dir, "missing.css"), ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadSource(missing) error = %v, want ErrNotExist", err)
	}
}
