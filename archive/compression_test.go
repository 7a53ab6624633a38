package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	// Spans several blocks.
	data := bytes.Repeat([]byte("d 0 1 {hello world}\n"), 40000)
	require.Greater(t, len(data), 2*defaultBlockSize)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			packed, err := Compress(data, c)
			require.NoError(t, err)
			if c != CompressionNone {
				assert.Less(t, len(packed), len(data)/2)
			}
			plain, err := Decompress(packed, c)
			require.NoError(t, err)
			assert.Equal(t, data, plain)
		})
	}
}

func TestIncompressibleBlockStoredRaw(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i * 17 % 251)
	}
	packed, err := Compress(data, CompressionLZ4)
	require.NoError(t, err)
	plain, err := Decompress(packed, CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, data, plain)
}

func TestDecompressTruncated(t *testing.T) {
	packed, err := Compress(bytes.Repeat([]byte("abc"), 1000), CompressionZSTD)
	require.NoError(t, err)

	_, err = Decompress(packed[:len(packed)-3], CompressionZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Decompress(packed[:4], CompressionZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, ".zst", CompressionZSTD.Ext())
	assert.Equal(t, "", CompressionNone.Ext())
}
