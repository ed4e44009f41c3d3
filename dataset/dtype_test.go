package dataset

import (
	"encoding/binary"
	"testing"
)

func TestDTypeSize(t *testing.T) {
	cases := []struct {
		dt   DType
		size int
	}{
		{Uint8, 1}, {Int8, 1},
		{Uint16, 2}, {Int16, 2},
		{Uint32, 4}, {Int32, 4}, {Float32, 4},
		{Uint64, 8}, {Int64, 8}, {Float64, 8},
	}
	for _, c := range cases {
		if got := c.dt.Size(); got != c.size {
			t.Errorf("%s: size %d want %d", c.dt, got, c.size)
		}
	}
}

func TestAsUint16Aliases(t *testing.T) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:], 1)
	binary.LittleEndian.PutUint16(b[2:], 2)
	binary.LittleEndian.PutUint16(b[4:], 3)
	binary.LittleEndian.PutUint16(b[6:], 4)

	v := AsUint16(b)
	if len(v) != 4 {
		t.Fatalf("len: got %d want 4", len(v))
	}
	for i, want := range []uint16{1, 2, 3, 4} {
		if v[i] != want {
			t.Errorf("v[%d]: got %d want %d", i, v[i], want)
		}
	}
	// same memory, not a copy
	v[0] = 42
	if binary.LittleEndian.Uint16(b) != 42 {
		t.Error("AsUint16 returned a copy")
	}
}

func TestAsFloat32Empty(t *testing.T) {
	if AsFloat32(nil) != nil {
		t.Error("AsFloat32(nil) should be nil")
	}
	if AsFloat32(make([]byte, 3)) != nil {
		t.Error("AsFloat32 on a short buffer should be nil")
	}
}
