package anvil

import (
	"math/bits"

	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

// minBitsPerEntry is the smallest index width the format uses, even for tiny palettes.
const minBitsPerEntry = 4

// BitsPerEntry returns the width of one packed palette index: max(4, ceil(log2(n))).
func BitsPerEntry(paletteLen int) int {
	if paletteLen < 1 {
		return minBitsPerEntry
	}
	return max(minBitsPerEntry, bits.Len(uint(paletteLen-1)))
}

// packedLen returns how many words hold one section at the given width.
// Entries never straddle words; the tail of the last word is padding.
func packedLen(width int) int {
	perWord := 64 / width
	return (chunk.SubchunkVolume + perWord - 1) / perWord
}

// UnpackSection decodes the packed palette indexes in data into dst, which must
// hold exactly one section. Entries are read least-significant first and
// decoding stops at the section boundary even in the middle of a word.
func UnpackSection(dst []chunk.BlockID, palette []chunk.BlockID, data []int64) error {
	if len(dst) != chunk.SubchunkVolume {
		return malformed("section buffer holds %d blocks", len(dst))
	}
	if len(palette) == 0 {
		return malformed("empty palette")
	}

	width := BitsPerEntry(len(palette))
	if want := packedLen(width); len(data) < want {
		return malformed("packed array has %d words, want %d for %d-bit entries", len(data), want, width)
	}

	var (
		perWord = 64 / width
		mask    = uint64(1)<<width - 1
		n       = uint64(len(palette))
		i       int
	)
	for _, word := range data {
		v := uint64(word)
		for j := 0; j < perWord; j++ {
			idx := v & mask
			v >>= width
			if idx >= n {
				return malformed("palette index %d out of range at block %d (palette size %d)", idx, i, n)
			}
			dst[i] = palette[idx]
			i++
			if i == chunk.SubchunkVolume {
				return nil
			}
		}
	}
	return nil
}

// PackSection is the inverse of UnpackSection: it encodes src as indexes into palette.
// indexOf maps a block to its palette position.
func PackSection(src []chunk.BlockID, paletteLen int, indexOf func(chunk.BlockID) int) []int64 {
	width := BitsPerEntry(paletteLen)
	perWord := 64 / width
	out := make([]int64, packedLen(width))

	for i, b := range src {
		shift := (i % perWord) * width
		out[i/perWord] |= int64(uint64(indexOf(b)) << shift)
	}
	return out
}

func fill(dst []chunk.BlockID, b chunk.BlockID) {
	for i := range dst {
		dst[i] = b
	}
}
