package anvil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Region chunk compression schemes.
const (
	compressionGzip = 1
	compressionZlib = 2
	compressionNone = 3
)

// Decompress returns the raw NBT of a chunk payload, detecting gzip and zlib
// framing from the leading bytes. Anything else is returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return decompress(data, compressionGzip)
	case len(data) >= 2 && data[0] == 0x78 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		return decompress(data, compressionZlib)
	default:
		return data, nil
	}
}

func decompress(data []byte, scheme byte) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch scheme {
	case compressionNone:
		return data, nil
	case compressionGzip:
		r, err = gzip.NewReader(bytes.NewReader(data))
	case compressionZlib:
		r, err = zlib.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported compression scheme %d", scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("open decompressor: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zlib writer: %w", err)
	}
	return buf.Bytes(), nil
}
