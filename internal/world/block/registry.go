// Package block maps block names and property sets to numeric state IDs.
package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

const namespace = "minecraft:"

// ErrUnknown is returned when a name or property set has no state ID.
var ErrUnknown = errors.New("unknown block state")

// UnknownError describes the block state that failed to resolve.
type UnknownError struct {
	Name       string
	Properties map[string]string
	Reason     string
}

func (e *UnknownError) Error() string {
	if len(e.Properties) == 0 {
		return fmt.Sprintf("%s %q: %s", ErrUnknown, e.Name, e.Reason)
	}
	return fmt.Sprintf("%s %q %v: %s", ErrUnknown, e.Name, e.Properties, e.Reason)
}

func (e *UnknownError) Unwrap() error { return ErrUnknown }

// Resolver turns a palette entry into a state ID.
type Resolver interface {
	Resolve(name string, props map[string]string) (chunk.BlockID, error)
}

// Property is one state property of a block, values in state-ID order.
type Property struct {
	Name   string
	Values []string
}

// Block is a block type and the contiguous range of state IDs it owns.
type Block struct {
	ID           int
	Name         string
	MinStateID   int
	MaxStateID   int
	DefaultState int
	Properties   []Property
}

// State is a single resolved block state.
type State struct {
	ID         chunk.BlockID
	Name       string
	Properties map[string]string
}

// Registry resolves block states. It is read-only after construction and
// safe for concurrent use.
type Registry struct {
	byName  map[string]*Block
	ordered []*Block // by MinStateID
}

// rawBlock mirrors an entry of minecraft-data's blocks.json.
type rawBlock struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	MinStateID   int    `json:"minStateId"`
	MaxStateID   int    `json:"maxStateId"`
	DefaultState int    `json:"defaultState"`
	States       []struct {
		Name      string   `json:"name"`
		Type      string   `json:"type"`
		NumValues int      `json:"num_values"`
		Values    []string `json:"values"`
	} `json:"states"`
}

// Load reads a minecraft-data blocks.json file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from the contents of a minecraft-data blocks.json file.
func Parse(data []byte) (*Registry, error) {
	var raw []rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse blocks: %w", err)
	}

	blocks := make([]Block, 0, len(raw))
	for _, rb := range raw {
		b := Block{
			ID:           rb.ID,
			Name:         rb.Name,
			MinStateID:   rb.MinStateID,
			MaxStateID:   rb.MaxStateID,
			DefaultState: rb.DefaultState,
		}
		for _, s := range rb.States {
			values := s.Values
			if len(values) == 0 && s.Type == "bool" {
				values = []string{"true", "false"}
			}
			if len(values) != s.NumValues {
				return nil, fmt.Errorf("block %s: property %s lists %d values, want %d",
					rb.Name, s.Name, len(values), s.NumValues)
			}
			b.Properties = append(b.Properties, Property{Name: s.Name, Values: values})
		}
		blocks = append(blocks, b)
	}
	return New(blocks)
}

// New builds a Registry from block definitions.
func New(blocks []Block) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Block, len(blocks))}
	for i := range blocks {
		b := &blocks[i]
		b.Name = strings.TrimPrefix(b.Name, namespace)

		count := 1
		for _, p := range b.Properties {
			count *= len(p.Values)
		}
		if b.MaxStateID-b.MinStateID+1 != count {
			return nil, fmt.Errorf("block %s: state range [%d,%d] does not match %d property combinations",
				b.Name, b.MinStateID, b.MaxStateID, count)
		}
		if b.DefaultState < b.MinStateID || b.DefaultState > b.MaxStateID {
			return nil, fmt.Errorf("block %s: default state %d outside range", b.Name, b.DefaultState)
		}
		if b.MaxStateID > 0xFFFF {
			return nil, fmt.Errorf("block %s: state %d does not fit in 16 bits", b.Name, b.MaxStateID)
		}
		if _, dup := r.byName[b.Name]; dup {
			return nil, fmt.Errorf("duplicate block %s", b.Name)
		}
		r.byName[b.Name] = b
		r.ordered = append(r.ordered, b)
	}

	slices.SortFunc(r.ordered, func(a, b *Block) int { return a.MinStateID - b.MinStateID })
	for i := 1; i < len(r.ordered); i++ {
		if r.ordered[i].MinStateID <= r.ordered[i-1].MaxStateID {
			return nil, fmt.Errorf("blocks %s and %s have overlapping states",
				r.ordered[i-1].Name, r.ordered[i].Name)
		}
	}
	return r, nil
}

// Len returns the number of block types.
func (r *Registry) Len() int { return len(r.ordered) }

// ByName returns the block type with the given name, namespaced or not.
func (r *Registry) ByName(name string) (*Block, bool) {
	b, ok := r.byName[strings.TrimPrefix(name, namespace)]
	return b, ok
}

// Resolve returns the state ID for name with the given properties.
// Properties left out take their value from the block's default state.
func (r *Registry) Resolve(name string, props map[string]string) (chunk.BlockID, error) {
	b, ok := r.ByName(name)
	if !ok {
		return 0, &UnknownError{Name: name, Properties: props, Reason: "no such block"}
	}
	for k := range props {
		if b.property(k) < 0 {
			return 0, &UnknownError{Name: name, Properties: props, Reason: "no property " + k}
		}
	}

	defaults := b.digits(b.DefaultState)
	id := 0
	for i, p := range b.Properties {
		digit := defaults[i]
		if v, ok := props[p.Name]; ok {
			digit = slices.Index(p.Values, v)
			if digit < 0 {
				return 0, &UnknownError{Name: name, Properties: props, Reason: fmt.Sprintf("invalid %s=%s", p.Name, v)}
			}
		}
		id = id*len(p.Values) + digit
	}
	return chunk.BlockID(b.MinStateID + id), nil
}

// Lookup returns the block state for a state ID.
func (r *Registry) Lookup(id chunk.BlockID) (State, bool) {
	i := sort.Search(len(r.ordered), func(i int) bool { return r.ordered[i].MaxStateID >= int(id) })
	if i == len(r.ordered) || r.ordered[i].MinStateID > int(id) {
		return State{}, false
	}
	b := r.ordered[i]

	s := State{ID: id, Name: namespace + b.Name}
	if len(b.Properties) > 0 {
		s.Properties = make(map[string]string, len(b.Properties))
		for j, d := range b.digits(int(id)) {
			s.Properties[b.Properties[j].Name] = b.Properties[j].Values[d]
		}
	}
	return s, true
}

func (b *Block) property(name string) int {
	return slices.IndexFunc(b.Properties, func(p Property) bool { return p.Name == name })
}

// digits splits a state ID into per-property value indexes, first property most significant.
func (b *Block) digits(state int) []int {
	out := make([]int, len(b.Properties))
	rem := state - b.MinStateID
	for i := len(b.Properties) - 1; i >= 0; i-- {
		n := len(b.Properties[i].Values)
		out[i] = rem % n
		rem /= n
	}
	return out
}
