package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of a snapshot.
type Compression uint8

const (
	// CompressionNone stores the dump as plain text.
	CompressionNone Compression = iota
	// CompressionLZ4 is fast and suits frequently saved tables.
	CompressionLZ4
	// CompressionZSTD gives the better ratio for cold archives.
	CompressionZSTD
)

// ErrCorrupt is returned for snapshot bytes that do not decode.
var ErrCorrupt = errors.New("corrupt snapshot")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Ext returns the file name suffix of the compression.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression maps a name produced by String back to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block layout: [raw size uint32][stored size uint32][data]. A stored size
// of 0 marks a block kept uncompressed.
const (
	blockHeaderSize  = 8
	defaultBlockSize = 256 * 1024
)

func compressBlock(dst, data []byte, c Compression) ([]byte, error) {
	var packed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		packed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	// Keep the raw bytes when compression saves less than 10%.
	if len(packed) == 0 || len(packed)*10 > len(data)*9 {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(packed)))
	dst = append(dst, hdr[:]...)
	return append(dst, packed...), nil
}

// Compress splits data into blocks and compresses each one.
func Compress(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	out := make([]byte, 0, len(data)/2+blockHeaderSize)
	for len(data) > 0 {
		n := min(len(data), defaultBlockSize)
		var err error
		if out, err = compressBlock(out, data[:n], c); err != nil {
			return nil, err
		}
		data = data[n:]
	}
	return out, nil
}

// Decompress reverses Compress.
func Decompress(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	var out bytes.Buffer
	for len(data) > 0 {
		if len(data) < blockHeaderSize {
			return nil, fmt.Errorf("%w: truncated block header", ErrCorrupt)
		}
		raw := int(binary.LittleEndian.Uint32(data[0:]))
		stored := int(binary.LittleEndian.Uint32(data[4:]))
		data = data[blockHeaderSize:]

		if stored == 0 {
			if len(data) < raw {
				return nil, fmt.Errorf("%w: truncated block", ErrCorrupt)
			}
			out.Write(data[:raw])
			data = data[raw:]
			continue
		}
		if len(data) < stored {
			return nil, fmt.Errorf("%w: truncated block", ErrCorrupt)
		}
		block, err := decompressBlock(data[:stored], raw, c)
		if err != nil {
			return nil, err
		}
		out.Write(block)
		data = data[stored:]
	}
	return out.Bytes(), nil
}

func decompressBlock(packed []byte, raw int, c Compression) ([]byte, error) {
	result := make([]byte, raw)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(packed, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != raw {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(packed, result[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(decoded) != raw {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unsupported %s", ErrCorrupt, c)
	}
}
