// Package encoding normalizes uploaded text files to UTF-8.
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

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO8859_9   = "ISO-8859-9"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decoded is a UTF-8 view of an input together with the charset it was read as.
type Decoded struct {
	io.Reader
	Charset string
}

// Detect sniffs the first bytes of r and returns a reader decoding it to UTF-8.
//
// A byte order mark wins. Otherwise valid UTF-8 passes through, then chardet
// is consulted, and anything it cannot name is read as Windows-1252, which is
// what spreadsheet exports on the till PCs default to.
func Detect(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), CharsetUTF16LE), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), CharsetUTF16BE), nil
	case utf8.Valid(buf):
		return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch result.Charset {
		case "UTF-8":
			return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
		case "ISO-8859-9":
			return decode(br, charmap.ISO8859_9, CharsetISO8859_9), nil
		}
	}

	return decode(br, charmap.Windows1252, CharsetWindows1252), nil
}

func decode(r io.Reader, enc encoding.Encoding, charset string) *Decoded {
	return &Decoded{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}
