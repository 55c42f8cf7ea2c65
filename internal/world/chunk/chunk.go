package chunk

import (
	"iter"
	"slices"
)

// HeightmapLongs is the word count of a packed 256-column heightmap
// (9 bits per column, 7 columns per word).
const HeightmapLongs = 37

// BlockID is a numeric block state identifier. The zero value is air.
type BlockID uint16

// Air is the default block.
const Air BlockID = 0

// Heightmaps holds the packed column heights carried over from the source data.
// The contents are never interpreted here.
type Heightmaps struct {
	MotionBlocking []int64
	WorldSurface   []int64
}

// DefaultHeightmaps returns the heightmaps of a completely empty chunk.
func DefaultHeightmaps() Heightmaps {
	return Heightmaps{
		MotionBlocking: make([]int64, HeightmapLongs),
		WorldSurface:   make([]int64, HeightmapLongs),
	}
}

// Blocks stores every block of a chunk column.
// Ordering is yzx with y most significant; the wire format depends on it.
type Blocks struct {
	blocks    []BlockID
	Heightmap Heightmaps
}

// Data is a decoded chunk column at a position.
type Data struct {
	Pos    Pos
	Blocks *Blocks
}

// NewBlocks returns an all-air chunk with empty heightmaps.
func NewBlocks() *Blocks {
	return EmptyWithHeightmap(DefaultHeightmaps())
}

// EmptyWithHeightmap returns an all-air chunk that keeps hm as its heightmap.
func EmptyWithHeightmap(hm Heightmaps) *Blocks {
	return &Blocks{
		blocks:    make([]BlockID, ChunkVolume),
		Heightmap: hm,
	}
}

// Block returns the block at c.
func (b *Blocks) Block(c RelativeCoord) BlockID {
	return b.blocks[Index(c)]
}

// SetBlock sets the block at c and returns the old one.
// The heightmap is not updated; callers must not rely on it after manual edits.
func (b *Blocks) SetBlock(c RelativeCoord, id BlockID) BlockID {
	return b.SetBlockNoHeightmapUpdate(c, id)
}

// SetBlockNoHeightmapUpdate sets the block at c and returns the old one.
// Use it when the heightmap was supplied through EmptyWithHeightmap.
func (b *Blocks) SetBlockNoHeightmapUpdate(c RelativeCoord, id BlockID) BlockID {
	i := Index(c)
	old := b.blocks[i]
	b.blocks[i] = id
	return old
}

// Raw exposes the Y-major block array. Its length is always ChunkVolume.
func (b *Blocks) Raw() []BlockID {
	return b.blocks
}

// Subchunks yields each 16x16x16 window of the column in ascending Y order,
// paired with its 0-based section index. Windows alias the chunk's storage
// and must be treated as read-only.
func (b *Blocks) Subchunks() iter.Seq2[int, []BlockID] {
	return func(yield func(int, []BlockID) bool) {
		for i := 0; i < SectionCount; i++ {
			lo := i * SubchunkVolume
			if !yield(i, b.blocks[lo:lo+SubchunkVolume:lo+SubchunkVolume]) {
				return
			}
		}
	}
}

// Equal reports whether two chunks have the same position, blocks and heightmaps.
func Equal(a, b *Data) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Pos == b.Pos &&
		slices.Equal(a.Blocks.blocks, b.Blocks.blocks) &&
		slices.Equal(a.Blocks.Heightmap.MotionBlocking, b.Blocks.Heightmap.MotionBlocking) &&
		slices.Equal(a.Blocks.Heightmap.WorldSurface, b.Blocks.Heightmap.WorldSurface)
}

// FromRaw builds a chunk from an existing Y-major array, taking ownership of it.
// It reports false if the array is not exactly ChunkVolume long.
func FromRaw(blocks []BlockID, hm Heightmaps) (*Blocks, bool) {
	if len(blocks) != ChunkVolume {
		return nil, false
	}
	return &Blocks{blocks: blocks, Heightmap: hm}, true
}
