package medium

import (
	"errors"
	"path/filepath"
	"testing"
)

func testGeometry() Geometry {
	return Geometry{Capacity: 4096, PageSize: 256, BlockSize: 1024, Endurance: 2}
}

func TestProgramRequiresErasedTarget(t *testing.T) {
	m := NewSimMedium(testGeometry())
	buf := make([]byte, 256)
	if err := m.Program(0, buf); err != nil {
		t.Fatalf("first program: %v", err)
	}
	if err := m.Program(0, buf); !errors.Is(err, ErrNotErased) {
		t.Fatalf("want ErrNotErased, got %v", err)
	}
}

func TestEraseRestoresFF(t *testing.T) {
	m := NewSimMedium(testGeometry())
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := m.Program(0, buf); err != nil {
		t.Fatalf("program: %v", err)
	}
	if err := m.Erase(0); err != nil {
		t.Fatalf("erase: %v", err)
	}
	out := make([]byte, 256)
	if err := m.Read(0, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, b := range out {
		if b != 0xFF {
			t.Fatalf("erase did not restore 0xFF")
		}
	}
}

func TestEraseEnduranceExhausted(t *testing.T) {
	m := NewSimMedium(testGeometry())
	if err := m.Erase(0); err != nil {
		t.Fatalf("erase 1: %v", err)
	}
	if err := m.Erase(0); err != nil {
		t.Fatalf("erase 2: %v", err)
	}
	if err := m.Erase(0); !errors.Is(err, ErrEnduranceUsed) {
		t.Fatalf("want ErrEnduranceUsed, got %v", err)
	}
}

func TestProgramRejectsMisalignment(t *testing.T) {
	m := NewSimMedium(testGeometry())
	if err := m.Program(1, make([]byte, 256)); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("want ErrMisaligned, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := testGeometry()
	m := NewSimMedium(g)
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = 0x7A
	}
	if err := m.Program(0, buf); err != nil {
		t.Fatalf("program: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sim.img")
	if err := m.Snapshot(path); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	loaded, err := LoadSimMedium(path, g)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out := make([]byte, 256)
	if err := loaded.Read(0, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, b := range out {
		if b != 0x7A {
			t.Fatalf("snapshot round trip lost data")
		}
	}
}
