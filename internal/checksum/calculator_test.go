package checksum

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256_CalculateRaw(t *testing.T) {
	c := New()

	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		c.CalculateRaw([]byte("abc")))

	assert.NotEqual(t, c.CalculateRaw([]byte("a;b\n")), c.CalculateRaw([]byte("a;b\r\n")),
		"raw checksum must not normalize line endings")
}

func TestSHA256_WrapMatchesRaw(t *testing.T) {
	c := New()
	content := strings.Repeat("PERTE;SEXO_PERSONA;ANO_EGRESO\n1;2;2019\n", 1000)

	hr := c.Wrap(strings.NewReader(content))
	_, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)

	assert.Equal(t, c.CalculateRaw([]byte(content)), hr.Sum())
	assert.Equal(t, int64(len(content)), hr.BytesRead())
}

func TestSHA256_WrapEmpty(t *testing.T) {
	hr := New().Wrap(strings.NewReader(""))
	_, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)
	assert.Equal(t, New().CalculateRaw(nil), hr.Sum())
}
