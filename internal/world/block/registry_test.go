package block_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/chunkstore/internal/world/block"
	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

const testBlocks = `[
  {"id": 0, "name": "air", "minStateId": 0, "maxStateId": 0, "defaultState": 0, "states": []},
  {"id": 1, "name": "stone", "minStateId": 1, "maxStateId": 1, "defaultState": 1, "states": []},
  {"id": 2, "name": "oak_log", "minStateId": 2, "maxStateId": 4, "defaultState": 3,
   "states": [{"name": "axis", "type": "enum", "num_values": 3, "values": ["x", "y", "z"]}]},
  {"id": 3, "name": "oak_stairs", "minStateId": 5, "maxStateId": 12, "defaultState": 6,
   "states": [
     {"name": "facing", "type": "enum", "num_values": 4, "values": ["north", "south", "west", "east"]},
     {"name": "waterlogged", "type": "bool", "num_values": 2}
   ]}
]`

func newRegistry(t *testing.T) *block.Registry {
	t.Helper()
	r, err := block.Parse([]byte(testBlocks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestResolve(t *testing.T) {
	r := newRegistry(t)

	cases := []struct {
		name  string
		props map[string]string
		want  uint16
	}{
		{"minecraft:air", nil, 0},
		{"stone", nil, 1},
		{"minecraft:oak_log", map[string]string{"axis": "x"}, 2},
		{"minecraft:oak_log", map[string]string{"axis": "z"}, 4},
		{"minecraft:oak_log", nil, 3},
		// facing=north waterlogged=true is the first state
		{"minecraft:oak_stairs", map[string]string{"facing": "north", "waterlogged": "true"}, 5},
		{"minecraft:oak_stairs", map[string]string{"facing": "north", "waterlogged": "false"}, 6},
		{"minecraft:oak_stairs", map[string]string{"facing": "east", "waterlogged": "false"}, 12},
		{"minecraft:oak_stairs", nil, 6},
		{"minecraft:oak_stairs", map[string]string{"facing": "south"}, 8},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.name, tc.props)
		if err != nil {
			t.Errorf("Resolve(%s, %v): %v", tc.name, tc.props, err)
			continue
		}
		if uint16(got) != tc.want {
			t.Errorf("Resolve(%s, %v) = %d, want %d", tc.name, tc.props, got, tc.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	r := newRegistry(t)

	cases := []struct {
		name  string
		props map[string]string
	}{
		{"minecraft:unobtainium", nil},
		{"minecraft:oak_log", map[string]string{"axis": "w"}},
		{"minecraft:stone", map[string]string{"snowy": "true"}},
	}
	for _, tc := range cases {
		_, err := r.Resolve(tc.name, tc.props)
		if !errors.Is(err, block.ErrUnknown) {
			t.Errorf("Resolve(%s, %v) error = %v, want ErrUnknown", tc.name, tc.props, err)
		}
		var ue *block.UnknownError
		if !errors.As(err, &ue) || ue.Name != tc.name {
			t.Errorf("Resolve(%s) should report the offending name, got %v", tc.name, err)
		}
	}
}

func TestLookupRoundTrip(t *testing.T) {
	r := newRegistry(t)

	for id := 0; id <= 12; id++ {
		s, ok := r.Lookup(chunk.BlockID(id))
		if !ok {
			t.Fatalf("Lookup(%d) not found", id)
		}
		back, err := r.Resolve(s.Name, s.Properties)
		if err != nil {
			t.Fatalf("Resolve(Lookup(%d)): %v", id, err)
		}
		if int(back) != id {
			t.Fatalf("Resolve(Lookup(%d)) = %d", id, back)
		}
	}

	if _, ok := r.Lookup(13); ok {
		t.Fatal("Lookup(13) should not be found")
	}
}

func TestLookupProperties(t *testing.T) {
	r := newRegistry(t)

	s, ok := r.Lookup(12)
	if !ok {
		t.Fatal("Lookup(12) not found")
	}
	if s.Name != "minecraft:oak_stairs" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Properties["facing"] != "east" || s.Properties["waterlogged"] != "false" {
		t.Errorf("properties = %v", s.Properties)
	}
}

func TestNewRejectsBadRanges(t *testing.T) {
	_, err := block.New([]block.Block{
		{Name: "a", MinStateID: 0, MaxStateID: 1, DefaultState: 0},
	})
	if err == nil {
		t.Fatal("expected error for range not matching property combinations")
	}

	_, err = block.New([]block.Block{
		{Name: "a", MinStateID: 0, MaxStateID: 0},
		{Name: "b", MinStateID: 0, MaxStateID: 0},
	})
	if err == nil {
		t.Fatal("expected error for overlapping states")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	if err := os.WriteFile(path, []byte(testBlocks), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := block.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Len() != 4 {
		t.Fatalf("Len = %d, want 4", r.Len())
	}
}
