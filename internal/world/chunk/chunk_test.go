package chunk

import (
	"math/rand"
	"testing"
)

func TestIndexOrderingExhaustive(t *testing.T) {
	for y := MinY; y < MinY+WorldHeight; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				c, err := NewRelativeCoord(x, y, z)
				if err != nil {
					t.Fatalf("NewRelativeCoord(%d,%d,%d): %v", x, y, z, err)
				}
				want := (y-MinY)*256 + z*16 + x
				if got := Index(c); got != want {
					t.Fatalf("Index(%d,%d,%d) = %d, want %d", x, y, z, got, want)
				}
				if back := RelativeCoordFromIndex(want); back != c {
					t.Fatalf("RelativeCoordFromIndex(%d) = %+v, want %+v", want, back, c)
				}
			}
		}
	}
}

func TestSetBlockRandomized(t *testing.T) {
	b := NewBlocks()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		x, z := rng.Intn(16), rng.Intn(16)
		y := MinY + rng.Intn(WorldHeight)
		c, err := NewRelativeCoord(x, y, z)
		if err != nil {
			t.Fatalf("NewRelativeCoord: %v", err)
		}
		id := BlockID(rng.Intn(1 << 16))

		prev := b.Raw()[(y-MinY)*256+z*16+x]
		if old := b.SetBlockNoHeightmapUpdate(c, id); old != prev {
			t.Fatalf("SetBlockNoHeightmapUpdate returned %d, want %d", old, prev)
		}
		if got := b.Raw()[(y-MinY)*256+z*16+x]; got != id {
			t.Fatalf("raw[%d] = %d, want %d", (y-MinY)*256+z*16+x, got, id)
		}
		if got := b.Block(c); got != id {
			t.Fatalf("Block(%+v) = %d, want %d", c, got, id)
		}
	}
}

func TestSetBlockReturnsPrevious(t *testing.T) {
	b := NewBlocks()
	c, _ := NewRelativeCoord(3, 10, 5)

	if old := b.SetBlock(c, 7); old != Air {
		t.Errorf("first SetBlock returned %d, want air", old)
	}
	if old := b.SetBlock(c, 9); old != 7 {
		t.Errorf("second SetBlock returned %d, want 7", old)
	}
}

func TestNewRelativeCoordRejectsOutOfRange(t *testing.T) {
	cases := []struct{ x, y, z int }{
		{-1, 0, 0},
		{16, 0, 0},
		{0, 0, -1},
		{0, 0, 16},
		{0, MinY - 1, 0},
		{0, MinY + WorldHeight, 0},
	}
	for _, tc := range cases {
		if _, err := NewRelativeCoord(tc.x, tc.y, tc.z); err == nil {
			t.Errorf("NewRelativeCoord(%d,%d,%d) should fail", tc.x, tc.y, tc.z)
		}
	}
}

func TestEmptyWithHeightmapKeepsHeightmap(t *testing.T) {
	hm := DefaultHeightmaps()
	hm.MotionBlocking[0] = 42
	hm.WorldSurface[36] = -1

	b := EmptyWithHeightmap(hm)
	if len(b.Raw()) != ChunkVolume {
		t.Fatalf("len = %d, want %d", len(b.Raw()), ChunkVolume)
	}
	for i, id := range b.Raw() {
		if id != Air {
			t.Fatalf("block %d = %d, want air", i, id)
		}
	}
	if b.Heightmap.MotionBlocking[0] != 42 || b.Heightmap.WorldSurface[36] != -1 {
		t.Fatal("heightmap not carried through")
	}
}

func TestSubchunks(t *testing.T) {
	b := NewBlocks()
	for i := 0; i < SectionCount; i++ {
		b.Raw()[i*SubchunkVolume] = BlockID(i + 1)
	}

	for pass := 0; pass < 2; pass++ {
		n := 0
		for idx, sub := range b.Subchunks() {
			if idx != n {
				t.Fatalf("pass %d: section index %d, want %d", pass, idx, n)
			}
			if len(sub) != SubchunkVolume {
				t.Fatalf("section %d has %d blocks", idx, len(sub))
			}
			if sub[0] != BlockID(idx+1) {
				t.Fatalf("section %d starts with %d, want %d", idx, sub[0], idx+1)
			}
			n++
		}
		if n != SectionCount {
			t.Fatalf("pass %d: got %d sections, want %d", pass, n, SectionCount)
		}
	}
}

func TestSubchunksEarlyStop(t *testing.T) {
	b := NewBlocks()
	n := 0
	for range b.Subchunks() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("iterated %d sections, want 3", n)
	}
}

func TestFromRaw(t *testing.T) {
	if _, ok := FromRaw(make([]BlockID, ChunkVolume-1), DefaultHeightmaps()); ok {
		t.Fatal("FromRaw accepted a short array")
	}
	b, ok := FromRaw(make([]BlockID, ChunkVolume), DefaultHeightmaps())
	if !ok || len(b.Raw()) != ChunkVolume {
		t.Fatal("FromRaw rejected a full array")
	}
}

func TestEqual(t *testing.T) {
	a := &Data{Pos: Pos{X: 1, Z: 2}, Blocks: NewBlocks()}
	b := &Data{Pos: Pos{X: 1, Z: 2}, Blocks: NewBlocks()}
	if !Equal(a, b) {
		t.Fatal("identical chunks should be equal")
	}
	b.Blocks.Raw()[100] = 5
	if Equal(a, b) {
		t.Fatal("chunks with different blocks should differ")
	}
	b.Blocks.Raw()[100] = 0
	b.Blocks.Heightmap.WorldSurface[3] = 1
	if Equal(a, b) {
		t.Fatal("chunks with different heightmaps should differ")
	}
}
