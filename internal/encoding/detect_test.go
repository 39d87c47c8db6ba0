package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/MrJamesThe3rd/moneynote/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "날짜;내용;금액;구분\n2024-01-05;점심;12000;지출\nCafé;12,50\n"

	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_UTF8AcrossPeekBoundary(t *testing.T) {
	// Place a three-byte character across the 4096 byte peek window.
	input := strings.Repeat("a", 4095) + "원" + "\n"

	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded "Descrição;Montante\n".
	latin1Bytes := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	assert.Equal(t, "Descrição;Montante\n", readAll(t, latin1Bytes))
}

func TestNewUTF8Reader_EUCKR(t *testing.T) {
	text := strings.Repeat("날짜;내용;금액;구분;분류\n2024-01-05;점심 식사;12000;지출;식비\n2024-01-10;월급;3000000;수입;급여\n", 5)

	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	assert.Equal(t, text, readAll(t, encoded))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("날짜;금액\n")...)

	assert.Equal(t, "날짜;금액\n", readAll(t, input))
}
