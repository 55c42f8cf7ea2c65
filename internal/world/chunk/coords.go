package chunk

import "fmt"

const (
	// MinY is the lowest block Y coordinate of the world.
	MinY = -64
	// WorldHeight is the number of block layers in a chunk column.
	WorldHeight = 384

	ChunkArea      = 16 * 16
	SubchunkVolume = ChunkArea * 16
	ChunkVolume    = ChunkArea * WorldHeight

	// SectionCount is the number of 16-block-tall sections in a chunk.
	SectionCount = WorldHeight / 16
	// MinSection is the Y index of the lowest section.
	MinSection = MinY / 16
)

// Pos identifies a chunk by its X and Z chunk coordinates.
type Pos struct{ X, Z int32 }

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// Height is a world block Y coordinate, which may be negative.
type Height int16

// HeightFromAbsolute converts a 0-based layer index into a Height.
func HeightFromAbsolute(abs uint16) Height {
	return Height(int(abs) + MinY)
}

// Absolute returns the 0-based layer index of h.
func (h Height) Absolute() uint16 {
	return uint16(int(h) - MinY)
}

// RelativeCoord is a block position inside a chunk column.
// Values built by NewRelativeCoord or RelativeCoordFromIndex are always in range.
type RelativeCoord struct {
	X, Z uint8
	Y    Height
}

// NewRelativeCoord validates and builds a chunk-relative coordinate.
// x and z must be in [0,16), y in [MinY, MinY+WorldHeight).
func NewRelativeCoord(x, y, z int) (RelativeCoord, error) {
	if x < 0 || x >= 16 || z < 0 || z >= 16 {
		return RelativeCoord{}, fmt.Errorf("relative coordinate out of range: x=%d z=%d", x, z)
	}
	if y < MinY || y >= MinY+WorldHeight {
		return RelativeCoord{}, fmt.Errorf("height out of range: y=%d", y)
	}
	return RelativeCoord{X: uint8(x), Z: uint8(z), Y: Height(y)}, nil
}

// RelativeCoordFromIndex maps a Y-major linear block index back to a coordinate.
// i must be in [0, ChunkVolume).
func RelativeCoordFromIndex(i int) RelativeCoord {
	return RelativeCoord{
		X: uint8(i % 16),
		Z: uint8((i % ChunkArea) / 16),
		Y: HeightFromAbsolute(uint16(i / ChunkArea)),
	}
}

// Index returns the linear offset of c: y_abs*256 + z*16 + x.
func Index(c RelativeCoord) int {
	return int(c.Y.Absolute())*ChunkArea + int(c.Z)*16 + int(c.X)
}
