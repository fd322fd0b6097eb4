package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  encoding.Charset
	}{
		{name: "plain utf8", input: []byte("Descrição;Valor\n"), want: encoding.UTF8},
		{name: "utf8 bom", input: append([]byte{0xEF, 0xBB, 0xBF}, "title"...), want: encoding.UTF8BOM},
		{name: "utf16 le bom", input: []byte{0xFF, 0xFE, 't', 0}, want: encoding.UTF16LE},
		{name: "utf16 be bom", input: []byte{0xFE, 0xFF, 0, 't'}, want: encoding.UTF16BE},
		{name: "empty", input: nil, want: encoding.UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encoding.Detect(tt.input))
		})
	}
}

func TestDetect_TruncatedRuneAtWindowEdge(t *testing.T) {
	head := []byte("Café;12,50\nOperaç")
	head = append(head, "ã"[0])

	assert.Equal(t, encoding.UTF8, encoding.Detect(head))
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Descrição;Valor\nCoxinha;20,00\nSalário;-3,00\n"

	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// ç = 0xE7, ã = 0xE3
	latin1 := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'V', 'a', 'l', 'o', 'r', '\n',
	}

	assert.Equal(t, "Descrição;Valor\n", readAll(t, latin1))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, "title,amount\n"...)

	assert.Equal(t, "title,amount\n", readAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'o', 0, 'k', 0}

	assert.Equal(t, "ok", readAll(t, input))
}

func TestNewUTF8Reader_LargerThanSniffWindow(t *testing.T) {
	input := strings.Repeat("Coxinha;20\n", 1000)

	assert.Equal(t, input, readAll(t, []byte(input)))
}
