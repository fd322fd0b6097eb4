// Package encoding normalises uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names an input encoding recognised by Detect.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8-BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of a file from its leading bytes.
// Byte order marks win, then strict UTF-8 validity, then chardet.
// Anything unrecognised is treated as Windows-1252.
func Detect(head []byte) Charset {
	switch {
	case bytes.HasPrefix(head, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(head, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(head, bomUTF16BE):
		return UTF16BE
	case validPrefix(head):
		return UTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return Windows1252
	}

	switch res.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-9":
		return ISO88599
	default:
		return Windows1252
	}
}

// NewUTF8Reader wraps r so that reads yield UTF-8 regardless of the
// source encoding. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peeking input: %w", err)
	}

	charset := Detect(head)

	switch charset {
	case UTF8:
		return br, nil
	case UTF8BOM:
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	return transform.NewReader(br, decoderFor(charset).NewDecoder()), nil
}

func decoderFor(c Charset) encoding.Encoding {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case ISO88599:
		return charmap.ISO8859_9
	default:
		return charmap.Windows1252
	}
}

// validPrefix reports whether head is UTF-8, tolerating a multi-byte rune
// cut off by the sniff window.
func validPrefix(head []byte) bool {
	if utf8.Valid(head) {
		return true
	}

	for trim := 1; trim < utf8.UTFMax && trim < len(head); trim++ {
		if utf8.Valid(head[:len(head)-trim]) && !utf8.FullRune(head[len(head)-trim:]) {
			return true
		}
	}

	return false
}
