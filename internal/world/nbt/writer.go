// Package nbt writes the big-endian named-tag format used by anvil chunk files.
// Reading is done with github.com/Tnze/go-mc/nbt.
package nbt

import (
	"encoding/binary"
	"io"
	"slices"
)

// NBT tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagShort     byte = 2
	TagInt       byte = 3
	TagLong      byte = 4
	TagFloat     byte = 5
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
	TagIntArray  byte = 11
	TagLongArray byte = 12
)

// Writer writes NBT binary data to an io.Writer.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
type Writer struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewWriter creates a new NBT Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) putByte(v byte) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *Writer) putUint16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *Writer) putInt32(v int32) {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

func (w *Writer) putInt64(v int64) {
	binary.BigEndian.PutUint64(w.buf[:8], uint64(v))
	w.write(w.buf[:8])
}

func (w *Writer) putString(s string) {
	w.putUint16(uint16(len(s)))
	if len(s) > 0 {
		w.write([]byte(s))
	}
}

func (w *Writer) writeTagHeader(tagType byte, name string) {
	w.putByte(tagType)
	w.putString(name)
}

// BeginCompound writes a compound tag header. Use name="" for the root.
// Elements of a compound list have no header: write their fields, then EndCompound.
func (w *Writer) BeginCompound(name string) {
	w.writeTagHeader(TagCompound, name)
}

// EndCompound writes an End tag to close a compound.
func (w *Writer) EndCompound() {
	w.putByte(TagEnd)
}

// WriteTagByte writes a named byte tag.
func (w *Writer) WriteTagByte(name string, v int8) {
	w.writeTagHeader(TagByte, name)
	w.putByte(byte(v))
}

// WriteInt writes a named int tag.
func (w *Writer) WriteInt(name string, v int32) {
	w.writeTagHeader(TagInt, name)
	w.putInt32(v)
}

// WriteString writes a named string tag.
func (w *Writer) WriteString(name string, v string) {
	w.writeTagHeader(TagString, name)
	w.putString(v)
}

// WriteLongArray writes a named long array tag.
func (w *Writer) WriteLongArray(name string, v []int64) {
	w.writeTagHeader(TagLongArray, name)
	w.putInt32(int32(len(v)))
	for _, val := range v {
		w.putInt64(val)
	}
}

// WriteStringCompound writes a compound of string tags with keys in sorted order.
func (w *Writer) WriteStringCompound(name string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	w.BeginCompound(name)
	for _, k := range keys {
		w.WriteString(k, m[k])
	}
	w.EndCompound()
}

// BeginList writes a named list tag header.
// A list of compounds is followed by count compound bodies, each closed with EndCompound.
func (w *Writer) BeginList(name string, elemType byte, count int32) {
	w.writeTagHeader(TagList, name)
	w.putByte(elemType)
	w.putInt32(count)
}
