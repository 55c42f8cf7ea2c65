package anvil

import (
	"bytes"
	"fmt"

	"github.com/OCharnyshevich/chunkstore/internal/world/block"
	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
	"github.com/OCharnyshevich/chunkstore/internal/world/nbt"
)

// DataVersion is written into encoded chunks (1.21.1).
const DataVersion = 3955

// StateLookup maps a state ID back to its name and properties.
type StateLookup interface {
	Lookup(id chunk.BlockID) (block.State, bool)
}

// EncodeChunkNBT encodes a chunk as uncompressed anvil NBT with status full.
// Every section is written with its own palette; single-block sections omit
// the packed array.
func EncodeChunkNBT(c *chunk.Data, states StateLookup) ([]byte, error) {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)

	w.BeginCompound("")
	w.WriteInt("DataVersion", DataVersion)
	w.WriteInt("xPos", c.Pos.X)
	w.WriteInt("zPos", c.Pos.Z)
	w.WriteInt("yPos", chunk.MinSection)
	w.WriteString("Status", StatusFull)

	w.BeginList("sections", nbt.TagCompound, chunk.SectionCount)
	for i, sub := range c.Blocks.Subchunks() {
		y := i + chunk.MinSection
		palette, index := sectionPalette(sub)

		w.WriteTagByte("Y", int8(y))
		w.BeginCompound("block_states")
		w.BeginList("palette", nbt.TagCompound, int32(len(palette)))
		for _, id := range palette {
			st, ok := states.Lookup(id)
			if !ok {
				return nil, fmt.Errorf("section %d: no block state for id %d", y, id)
			}
			w.WriteString("Name", st.Name)
			if len(st.Properties) > 0 {
				w.WriteStringCompound("Properties", st.Properties)
			}
			w.EndCompound()
		}
		if len(palette) > 1 {
			w.WriteLongArray("data", PackSection(sub, len(palette), func(b chunk.BlockID) int { return index[b] }))
		}
		w.EndCompound() // block_states
		w.EndCompound() // section
	}

	w.BeginCompound("Heightmaps")
	w.WriteLongArray("MOTION_BLOCKING", c.Blocks.Heightmap.MotionBlocking)
	w.WriteLongArray("WORLD_SURFACE", c.Blocks.Heightmap.WorldSurface)
	w.EndCompound()

	w.EndCompound() // root

	if w.Err() != nil {
		return nil, w.Err()
	}
	return buf.Bytes(), nil
}

// sectionPalette lists the distinct blocks of a section in order of first appearance.
func sectionPalette(sub []chunk.BlockID) ([]chunk.BlockID, map[chunk.BlockID]int) {
	index := make(map[chunk.BlockID]int)
	var palette []chunk.BlockID
	for _, b := range sub {
		if _, ok := index[b]; !ok {
			index[b] = len(palette)
			palette = append(palette, b)
		}
	}
	return palette, index
}
