package nbt

import (
	"bytes"
	"encoding/binary"
	"testing"

	mcnbt "github.com/Tnze/go-mc/nbt"
)

func TestWriteInt(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteInt("x", 12345)

	data := buf.Bytes()
	if data[0] != TagInt {
		t.Fatalf("expected tag type %d, got %d", TagInt, data[0])
	}
	// skip tag(1) + name_len(2) + name(1) = 4 bytes
	val := int32(binary.BigEndian.Uint32(data[4:8]))
	if val != 12345 {
		t.Fatalf("expected 12345, got %d", val)
	}
}

func TestWriteString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("s", "hello")

	data := buf.Bytes()
	if data[0] != TagString {
		t.Fatalf("expected tag type %d, got %d", TagString, data[0])
	}
	// tag(1) + name_len(2) + name(1) = 4, then string_len(2) + string(5)
	strLen := binary.BigEndian.Uint16(data[4:6])
	if strLen != 5 {
		t.Fatalf("expected string length 5, got %d", strLen)
	}
	if string(data[6:11]) != "hello" {
		t.Fatalf("expected 'hello', got %q", string(data[6:11]))
	}
}

func TestWriteLongArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteLongArray("la", []int64{-1, 0x0102030405060708})

	data := buf.Bytes()
	if data[0] != TagLongArray {
		t.Fatalf("expected tag type %d, got %d", TagLongArray, data[0])
	}
	// tag(1) + name_len(2) + name(2) = 5, then count(4) + longs(16)
	count := int32(binary.BigEndian.Uint32(data[5:9]))
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	v0 := int64(binary.BigEndian.Uint64(data[9:17]))
	v1 := int64(binary.BigEndian.Uint64(data[17:25]))
	if v0 != -1 || v1 != 0x0102030405060708 {
		t.Fatalf("expected [-1,0x0102030405060708], got [%d,0x%X]", v0, v1)
	}
}

func TestBeginList(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.BeginList("items", TagCompound, 2)

	data := buf.Bytes()
	if data[0] != TagList {
		t.Fatalf("expected list tag")
	}
	// tag(1) + name_len(2) + name(5) = 8, then elem_type(1) + count(4)
	if data[8] != TagCompound {
		t.Fatalf("expected elem type %d, got %d", TagCompound, data[8])
	}
	count := int32(binary.BigEndian.Uint32(data[9:13]))
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

// The writer's output must be readable by the parser the decoder uses.
func TestReadableByParser(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.BeginCompound("")
	w.WriteString("Status", "minecraft:full")
	w.WriteTagByte("Flag", -3)
	w.BeginList("sections", TagCompound, 2)
	for _, y := range []int32{-4, 3} {
		w.WriteInt("Y", y)
		w.WriteStringCompound("Properties", map[string]string{"b": "2", "a": "1"})
		w.WriteLongArray("data", []int64{int64(y), 7})
		w.EndCompound()
	}
	w.EndCompound()

	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}

	var got struct {
		Status   string `nbt:"Status"`
		Flag     int8   `nbt:"Flag"`
		Sections []struct {
			Y          int32             `nbt:"Y"`
			Properties map[string]string `nbt:"Properties"`
			Data       []int64           `nbt:"data"`
		} `nbt:"sections"`
	}
	if err := mcnbt.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Status != "minecraft:full" || got.Flag != -3 {
		t.Fatalf("unexpected root fields: %+v", got)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got.Sections))
	}
	if got.Sections[1].Y != 3 || got.Sections[1].Properties["b"] != "2" || got.Sections[1].Data[1] != 7 {
		t.Fatalf("unexpected section: %+v", got.Sections[1])
	}
}

func TestNestedCompound(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.BeginCompound("")
	w.BeginCompound("Heightmaps")
	w.WriteInt("xPos", 3)
	w.EndCompound()
	w.EndCompound()

	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}

	data := buf.Bytes()
	if data[0] != TagCompound {
		t.Fatal("expected outer compound")
	}
	if data[3] != TagCompound {
		t.Fatal("expected inner compound")
	}
	if data[len(data)-1] != TagEnd || data[len(data)-2] != TagEnd {
		t.Fatal("expected two end tags at end")
	}
}
