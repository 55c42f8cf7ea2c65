package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

const (
	sectorSize    = 4096
	headerSectors = 2 // location table + timestamp table
)

// RegionPath returns the .mca file holding the chunk at pos.
func RegionPath(dir string, pos chunk.Pos) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", pos.X>>5, pos.Z>>5))
}

// ReadRegionChunk returns the decompressed NBT payload of one chunk from a region file.
// It returns ErrChunkNotFound if the chunk has never been saved.
func ReadRegionChunk(path string, pos chunk.Pos) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrChunkNotFound, pos)
		}
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	var loc [4]byte
	off := int64(regionIndex(pos) * 4)
	if _, err := f.ReadAt(loc[:], off); err != nil {
		return nil, fmt.Errorf("read location of chunk %s: %w", pos, err)
	}
	entry := binary.BigEndian.Uint32(loc[:])
	sector, count := int64(entry>>8), int64(entry&0xFF)
	if sector == 0 || count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChunkNotFound, pos)
	}
	if sector < headerSectors {
		return nil, fmt.Errorf("chunk %s points into the region header (sector %d)", pos, sector)
	}

	var header [5]byte
	if _, err := f.ReadAt(header[:], sector*sectorSize); err != nil {
		return nil, fmt.Errorf("read header of chunk %s: %w", pos, err)
	}
	length := int64(binary.BigEndian.Uint32(header[:4]))
	if length < 1 || length+4 > count*sectorSize {
		return nil, fmt.Errorf("chunk %s: payload length %d does not fit %d sectors", pos, length, count)
	}

	payload := make([]byte, length-1)
	if _, err := io.ReadFull(io.NewSectionReader(f, sector*sectorSize+5, length-1), payload); err != nil {
		return nil, fmt.Errorf("read payload of chunk %s: %w", pos, err)
	}
	return decompress(payload, header[4])
}

// SaveRegion writes all provided chunks to an .mca region file.
// chunks maps chunk positions to their uncompressed NBT data.
func SaveRegion(dir string, rx, rz int32, chunks map[chunk.Pos][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk's data: 4 bytes length + 1 byte compression type + compressed data,
	// padded to sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for pos, nbtData := range chunks {
		if pos.X>>5 != rx || pos.Z>>5 != rz {
			return fmt.Errorf("chunk %s is not in region (%d, %d)", pos, rx, rz)
		}
		compressed, err := compressZlib(nbtData)
		if err != nil {
			return fmt.Errorf("compress chunk %s: %w", pos, err)
		}

		payloadLen := uint32(len(compressed)) + 1 // +1 for compression byte
		totalLen := 4 + payloadLen
		sectorCount := (totalLen + sectorSize - 1) / sectorSize
		if sectorCount > 0xFF {
			return fmt.Errorf("chunk %s needs %d sectors", pos, sectorCount)
		}

		off := regionIndex(pos) * 4
		binary.BigEndian.PutUint32(locations[off:off+4], currentSector<<8|sectorCount)
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(compressed)

		if pad := int(sectorCount*sectorSize - totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}
		currentSector += sectorCount
	}

	// Write the file atomically.
	path := filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	for _, part := range [][]byte{locations, timestamps, dataBuf.Bytes()} {
		if _, err := f.Write(part); err != nil {
			return fmt.Errorf("write region file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}
	return nil
}

func regionIndex(pos chunk.Pos) int {
	return int(pos.X&31) + int(pos.Z&31)*32
}
