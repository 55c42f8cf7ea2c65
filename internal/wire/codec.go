// Package wire implements the flat little-endian chunk format used for
// transport and caching.
//
// Layout:
//
//	i32 X, i32 Z
//	ChunkVolume x u16 block IDs, Y-major (index = y*256 + z*16 + x)
//	u64 n, n x i64 motion-blocking heightmap
//	u64 m, m x i64 world-surface heightmap
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

// MaxHeightmapLongs bounds a heightmap length prefix so corrupt input
// cannot force a huge allocation.
const MaxHeightmapLongs = 4096

const (
	posLen    = 8
	blocksLen = chunk.ChunkVolume * 2
)

var (
	// ErrTruncatedInput means the buffer ended before the layout was complete.
	ErrTruncatedInput = errors.New("truncated chunk data")
	// ErrLengthMismatch means a length prefix or the total size is inconsistent.
	ErrLengthMismatch = errors.New("chunk data length mismatch")
)

// EncodedLen returns the exact size of the encoding of c.
func EncodedLen(c *chunk.Data) int {
	hm := c.Blocks.Heightmap
	return posLen + blocksLen + 8 + 8*len(hm.MotionBlocking) + 8 + 8*len(hm.WorldSurface)
}

// Encode serializes c.
func Encode(c *chunk.Data) []byte {
	return AppendEncode(make([]byte, 0, EncodedLen(c)), c)
}

// AppendEncode appends the encoding of c to buf.
func AppendEncode(buf []byte, c *chunk.Data) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Pos.X))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Pos.Z))
	for _, id := range c.Blocks.Raw() {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(id))
	}
	buf = appendLongs(buf, c.Blocks.Heightmap.MotionBlocking)
	buf = appendLongs(buf, c.Blocks.Heightmap.WorldSurface)
	return buf
}

// Write encodes c to w.
func Write(w io.Writer, c *chunk.Data) error {
	if _, err := w.Write(Encode(c)); err != nil {
		return fmt.Errorf("write chunk %s: %w", c.Pos, err)
	}
	return nil
}

func appendLongs(buf []byte, v []int64) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(v)))
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(x))
	}
	return buf
}

// Decode parses a buffer produced by Encode. The whole buffer must be consumed.
func Decode(b []byte) (*chunk.Data, error) {
	r := reader{buf: b}

	var pos chunk.Pos
	pos.X = int32(r.uint32())
	pos.Z = int32(r.uint32())

	raw := r.take(blocksLen)
	if r.err != nil {
		return nil, fmt.Errorf("%w: position and blocks need %d bytes, have %d", ErrTruncatedInput, posLen+blocksLen, len(b))
	}
	blocks := make([]chunk.BlockID, chunk.ChunkVolume)
	for i := range blocks {
		blocks[i] = chunk.BlockID(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	motion, err := r.longs("motion blocking heightmap")
	if err != nil {
		return nil, err
	}
	surface, err := r.longs("world surface heightmap")
	if err != nil {
		return nil, err
	}
	if rest := len(r.buf) - r.off; rest != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrLengthMismatch, rest)
	}

	cb, ok := chunk.FromRaw(blocks, chunk.Heightmaps{MotionBlocking: motion, WorldSurface: surface})
	if !ok {
		return nil, fmt.Errorf("%w: block count is not %d", ErrLengthMismatch, chunk.ChunkVolume)
	}
	return &chunk.Data{Pos: pos, Blocks: cb}, nil
}

// Read reads exactly one encoded chunk from r.
func Read(r io.Reader) (*chunk.Data, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chunk: %w", err)
	}
	return Decode(b)
}

type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = ErrTruncatedInput
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// longs reads a u64 count followed by that many i64 words.
func (r *reader) longs(what string) ([]int64, error) {
	n := r.uint64()
	if r.err != nil {
		return nil, fmt.Errorf("%w: missing %s length", ErrTruncatedInput, what)
	}
	if n > MaxHeightmapLongs {
		return nil, fmt.Errorf("%w: %s has %d words, limit %d", ErrLengthMismatch, what, n, MaxHeightmapLongs)
	}
	raw := r.take(int(n) * 8)
	if r.err != nil {
		return nil, fmt.Errorf("%w: %s needs %d words", ErrTruncatedInput, what, n)
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return out, nil
}
