package anvil

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteGeneration means the chunk exists but is not fully generated yet.
	// Callers should treat it as "not available", not as corruption.
	ErrIncompleteGeneration = errors.New("chunk not fully generated")
	// ErrMalformedTag means the chunk's tag tree could not be parsed or is inconsistent.
	ErrMalformedTag = errors.New("malformed chunk tag")
	// ErrUnknownBlock means a palette entry has no state in the block registry.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrChunkNotFound means the region file has no data for the chunk.
	ErrChunkNotFound = errors.New("chunk not present in region")
)

// UnknownBlockError identifies the palette entry that failed to resolve.
type UnknownBlockError struct {
	SectionY   int
	Name       string
	Properties map[string]string
	Err        error
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("%v %q %v in section %d: %v", ErrUnknownBlock, e.Name, e.Properties, e.SectionY, e.Err)
}

func (e *UnknownBlockError) Unwrap() []error { return []error{ErrUnknownBlock, e.Err} }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTag, fmt.Sprintf(format, args...))
}
