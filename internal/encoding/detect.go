package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader detects the encoding of the input and returns a reader
// that decodes the content to UTF-8.
//
// Detection order:
//  1. Check for BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Validate if the content is valid UTF-8 and return as-is
//  3. EUC-KR when every high byte pairs up as Hangul
//  4. Heuristic detection via chardet
//  5. Fallback to Windows-1252
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	if bytes.HasPrefix(buf, bomUTF16LE) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	if bytes.HasPrefix(buf, bomUTF16BE) {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	// A full peek may end in the middle of a multi-byte character.
	sample := buf
	if len(buf) == peekSize {
		sample = trimPartialRune(buf)
	}

	if utf8.Valid(sample) {
		return br, nil
	}

	// chardet often reports short Korean files as another CJK charset.
	if looksEUCKR(buf) {
		return transform.NewReader(br, korean.EUCKR.NewDecoder()), nil
	}

	detector := chardet.NewTextDetector()

	result, detectErr := detector.DetectBest(buf)
	if detectErr == nil {
		switch result.Charset {
		case "UTF-8":
			return br, nil
		case "EUC-KR":
			return transform.NewReader(br, korean.EUCKR.NewDecoder()), nil
		case "ISO-8859-1", "windows-1252":
			return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
		case "ISO-8859-9":
			return transform.NewReader(br, charmap.ISO8859_9.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}

		if !utf8.FullRune(b[i:]) {
			return b[:i]
		}

		break
	}

	return b
}

// looksEUCKR reports whether every non-ASCII byte forms a valid EUC-KR pair
// and most pairs are Hangul syllables.
func looksEUCKR(b []byte) bool {
	var pairs, hangul int

	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < 0x80 {
			continue
		}

		if c < 0xA1 || c == 0xFF {
			return false
		}

		if i+1 == len(b) {
			break // cut off by the peek
		}

		t := b[i+1]
		if t < 0xA1 || t == 0xFF {
			return false
		}

		pairs++

		if c >= 0xB0 && c <= 0xC8 {
			hangul++
		}

		i++
	}

	return hangul > 0 && hangul*2 >= pairs
}
