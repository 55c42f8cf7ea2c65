// Package anvil reads and writes chunks in the anvil NBT format.
package anvil

import (
	"fmt"
	"log/slog"

	"github.com/Tnze/go-mc/nbt"

	"github.com/OCharnyshevich/chunkstore/internal/world/block"
	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

// StatusFull is the generation status of a finished chunk.
const StatusFull = "minecraft:full"

type statusTag struct {
	Status string `nbt:"Status"`
}

type paletteEntry struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties"`
}

type blockStatesTag struct {
	Palette []paletteEntry `nbt:"palette"`
	Data    []int64        `nbt:"data"`
}

type sectionTag struct {
	Y           int8            `nbt:"Y"`
	BlockStates *blockStatesTag `nbt:"block_states"`
}

type heightmapsTag struct {
	MotionBlocking []int64 `nbt:"MOTION_BLOCKING"`
	WorldSurface   []int64 `nbt:"WORLD_SURFACE"`
}

type chunkTag struct {
	DataVersion int32         `nbt:"DataVersion"`
	Sections    []sectionTag  `nbt:"sections"`
	Heightmaps  heightmapsTag `nbt:"Heightmaps"`
}

// Decoder turns anvil chunk NBT into block arrays.
// It holds no per-call state and may be shared between goroutines
// as long as the resolver is safe for concurrent use.
type Decoder struct {
	blocks block.Resolver
	log    *slog.Logger
}

// NewDecoder creates a Decoder that resolves palettes through blocks.
func NewDecoder(blocks block.Resolver, log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{blocks: blocks, log: log}
}

// Status returns the generation status stored in a chunk's NBT without
// parsing the rest of the tree.
func Status(data []byte) (string, error) {
	var st statusTag
	if err := nbt.Unmarshal(data, &st); err != nil {
		return "", malformed("read status: %v", err)
	}
	return st.Status, nil
}

// Decode parses uncompressed chunk NBT into a chunk at pos. Payloads from
// ReadRegionChunk are already decompressed; use Decompress for gzip or zlib
// framed data from other sources.
//
// Sections are placed by their signed section Y: Y = -4 (MinSection) is
// subchunk 0 and fills block indexes [0, 4096), Y = 0 is subchunk 4 and so on
// up to Y = 19. A complete, sorted section list therefore fills the chunk
// bottom to top. Sections outside that range are accepted only when they carry
// no block states, like the light-only border sections at Y = -5 and 20.
//
// It returns ErrIncompleteGeneration for chunks that are not fully generated,
// ErrMalformedTag for unparseable or inconsistent data and an *UnknownBlockError
// when a palette entry cannot be resolved. No partial chunk is returned on error.
func (d *Decoder) Decode(data []byte, pos chunk.Pos) (*chunk.Data, error) {
	status, err := Status(data)
	if err != nil {
		return nil, err
	}
	if status != StatusFull {
		return nil, fmt.Errorf("%w: chunk %s has status %q", ErrIncompleteGeneration, pos, status)
	}

	var tag chunkTag
	if err := nbt.Unmarshal(data, &tag); err != nil {
		return nil, malformed("%v", err)
	}

	blocks := chunk.EmptyWithHeightmap(heightmaps(tag.Heightmaps))
	all := blocks.Raw()

	for _, sec := range tag.Sections {
		if sec.BlockStates == nil {
			d.log.Debug("section has no block states", "chunk", pos, "y", sec.Y)
			continue
		}
		// Placement follows the declared Y so gaps and ordering in the
		// section list cannot shift later sections.
		idx := int(sec.Y) - chunk.MinSection
		if idx < 0 || idx >= chunk.SectionCount {
			return nil, malformed("section %d outside world height", sec.Y)
		}

		palette, err := d.resolvePalette(int(sec.Y), sec.BlockStates.Palette)
		if err != nil {
			return nil, err
		}

		dst := all[idx*chunk.SubchunkVolume : (idx+1)*chunk.SubchunkVolume]
		if sec.BlockStates.Data == nil {
			fill(dst, palette[0])
			continue
		}
		if err := UnpackSection(dst, palette, sec.BlockStates.Data); err != nil {
			return nil, fmt.Errorf("section %d: %w", sec.Y, err)
		}
	}

	d.log.Debug("decoded chunk", "chunk", pos, "data_version", tag.DataVersion, "sections", len(tag.Sections))
	return &chunk.Data{Pos: pos, Blocks: blocks}, nil
}

func (d *Decoder) resolvePalette(sectionY int, entries []paletteEntry) ([]chunk.BlockID, error) {
	if len(entries) == 0 {
		return nil, malformed("section %d: empty palette", sectionY)
	}
	palette := make([]chunk.BlockID, len(entries))
	for i, e := range entries {
		id, err := d.blocks.Resolve(e.Name, e.Properties)
		if err != nil {
			return nil, &UnknownBlockError{SectionY: sectionY, Name: e.Name, Properties: e.Properties, Err: err}
		}
		palette[i] = id
	}
	return palette, nil
}

func heightmaps(t heightmapsTag) chunk.Heightmaps {
	hm := chunk.DefaultHeightmaps()
	if t.MotionBlocking != nil {
		hm.MotionBlocking = t.MotionBlocking
	}
	if t.WorldSurface != nil {
		hm.WorldSurface = t.WorldSurface
	}
	return hm
}
