// Package encoding turns imported text files into UTF-8 regardless of the
// charset the exporting spreadsheet or bank used.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type Charset string

const (
	CharsetUTF8        Charset = "utf-8"
	CharsetUTF8BOM     Charset = "utf-8-bom"
	CharsetUTF16LE     Charset = "utf-16le"
	CharsetUTF16BE     Charset = "utf-16be"
	CharsetWindows1252 Charset = "windows-1252"
	CharsetISO88599    Charset = "iso-8859-9"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of data. A byte order mark wins, then UTF-8
// validity, then chardet; anything else is treated as Windows-1252.
func Detect(data []byte) Charset {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return CharsetUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return CharsetUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return CharsetUTF16BE
	case utf8.Valid(data):
		return CharsetUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return CharsetUTF8
		case "ISO-8859-9":
			return CharsetISO88599
		}
	}

	return CharsetWindows1252
}

func decoderFor(c Charset) *encoding.Decoder {
	switch c {
	case CharsetUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case CharsetUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case CharsetISO88599:
		return charmap.ISO8859_9.NewDecoder()
	case CharsetWindows1252:
		return charmap.Windows1252.NewDecoder()
	}

	return nil
}

// ToUTF8 converts data to UTF-8 text, dropping any UTF-8 byte order mark.
func ToUTF8(data []byte) (string, error) {
	charset := Detect(data)

	switch charset {
	case CharsetUTF8:
		return string(data), nil
	case CharsetUTF8BOM:
		return string(data[len(bomUTF8):]), nil
	}

	out, err := decoderFor(charset).Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}

	return string(out), nil
}

// ReadUTF8 reads r to the end and returns its content as UTF-8 text.
func ReadUTF8(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	return ToUTF8(data)
}
