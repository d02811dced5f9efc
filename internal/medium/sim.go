package medium

import (
	"fmt"
	"sync"

	natomic "github.com/natefinch/atomic"
	"io"
	"os"
)

// SimMedium is an in-memory Driver backed by a byte arena pre-filled with
// the erase state (0xFF), enforcing the same alignment and endurance rules
// the real EEPROM driver does.
type SimMedium struct {
	mu       sync.Mutex
	geometry Geometry
	data     []byte
	eraseCnt []uint64 // per erase-block counters
	diag     Diagnostics
}

// NewSimMedium allocates a simulated medium of the given geometry, fully
// erased.
func NewSimMedium(g Geometry) *SimMedium {
	m := &SimMedium{
		geometry: g,
		data:     make([]byte, g.Capacity),
	}
	for i := range m.data {
		m.data[i] = 0xFF
	}
	if g.BlockSize > 0 {
		m.eraseCnt = make([]uint64, (g.Capacity+uint64(g.BlockSize)-1)/uint64(g.BlockSize))
	}
	return m
}

func (m *SimMedium) Geometry() Geometry { return m.geometry }

func (m *SimMedium) Read(addr uint64, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr+uint64(len(buf)) > m.geometry.Capacity {
		return fmt.Errorf("read addr %d len %d: %w", addr, len(buf), ErrOutOfRange)
	}
	copy(buf, m.data[addr:addr+uint64(len(buf))])
	m.diag.TotalReadCount++
	m.diag.TotalBytesRead += uint64(len(buf))
	return nil
}

func (m *SimMedium) Program(addr uint64, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.geometry.PageSize > 0 && (addr%uint64(m.geometry.PageSize) != 0 || uint64(len(buf))%uint64(m.geometry.PageSize) != 0) {
		return fmt.Errorf("program addr %d len %d: %w", addr, len(buf), ErrMisaligned)
	}
	if addr+uint64(len(buf)) > m.geometry.Capacity {
		return fmt.Errorf("program addr %d len %d: %w", addr, len(buf), ErrOutOfRange)
	}
	for i, b := range buf {
		if m.data[addr+uint64(i)] != 0xFF {
			return fmt.Errorf("program addr %d: %w", addr+uint64(i), ErrNotErased)
		}
		_ = b
	}
	copy(m.data[addr:addr+uint64(len(buf))], buf)
	m.diag.TotalWriteCount++
	m.diag.TotalBytesWritten += uint64(len(buf))
	return nil
}

func (m *SimMedium) Erase(addr uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bs := uint64(m.geometry.BlockSize)
	if bs == 0 || addr%bs != 0 {
		return fmt.Errorf("erase addr %d: %w", addr, ErrMisaligned)
	}
	if addr+bs > m.geometry.Capacity {
		return fmt.Errorf("erase addr %d: %w", addr, ErrOutOfRange)
	}
	idx := addr / bs
	if m.geometry.Endurance > 0 && m.eraseCnt[idx] >= m.geometry.Endurance {
		return fmt.Errorf("erase block %d: %w", idx, ErrEnduranceUsed)
	}
	for i := addr; i < addr+bs; i++ {
		m.data[i] = 0xFF
	}
	m.eraseCnt[idx]++
	m.diag.TotalEraseCount++
	if m.eraseCnt[idx] > m.diag.MaxEraseCount {
		m.diag.MaxEraseCount = m.eraseCnt[idx]
	}
	return nil
}

// NoteCRCError lets callers above (the block-type engine) record a CRC
// mismatch into the medium-level diagnostics, matching the original
// driver's crc_error_count.
func (m *SimMedium) NoteCRCError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diag.CRCErrorCount++
}

func (m *SimMedium) Diagnostics() Diagnostics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.diag
}

// Snapshot durably persists the arena to path using an atomic rename so a
// crash mid-write never leaves a torn image, matching ticket.go's use of
// natefinch/atomic for config/ticket persistence.
func (m *SimMedium) Snapshot(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return natomic.WriteFile(path, newBytesReader(m.data))
}

// LoadSimMedium restores an arena previously written by Snapshot.
func LoadSimMedium(path string, g Geometry) (*SimMedium, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data := make([]byte, g.Capacity)
	if _, err := io.ReadFull(f, data); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	m := &SimMedium{geometry: g, data: data}
	if g.BlockSize > 0 {
		m.eraseCnt = make([]uint64, (g.Capacity+uint64(g.BlockSize)-1)/uint64(g.BlockSize))
	}
	return m, nil
}

func newBytesReader(b []byte) io.Reader {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b   []byte
	pos int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
