package layout

import (
	"errors"
	"testing"

	"github.com/nvmctl/nvm/internal/crc"
)

func baseParams() Params {
	return Params{
		BlockSize:      256,
		CrcKind:        crc.CRC16,
		SlotSize:       1024,
		PageSize:       256,
		PrimaryOffset:  0,
		MediumCapacity: 4096,
	}
}

func TestCalculateHappyPath(t *testing.T) {
	l, err := Calculate(baseParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.DataOffset != 0 || l.DataSize != 256 || l.CrcOffset != 256 || l.CrcSize != 2 {
		t.Fatalf("unexpected layout: %+v", l)
	}
}

func TestCalculateRejectsMisalignedPrimary(t *testing.T) {
	p := baseParams()
	p.PrimaryOffset = 17
	if _, err := Calculate(p); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("want ErrMisaligned, got %v", err)
	}
}

func TestCalculateRejectsOversizeBlock(t *testing.T) {
	p := baseParams()
	p.BlockSize = 1024
	if _, err := Calculate(p); !errors.Is(err, ErrTooBig) {
		t.Fatalf("want ErrTooBig, got %v", err)
	}
}

func TestCalculateRejectsBackupOverlap(t *testing.T) {
	p := baseParams()
	backup := uint64(0)
	p.BackupOffset = &backup
	if _, err := Calculate(p); !errors.Is(err, ErrOverlap) {
		t.Fatalf("want ErrOverlap, got %v", err)
	}
}

func TestCalculateRejectsCapacityOverflow(t *testing.T) {
	p := baseParams()
	p.MediumCapacity = 512
	if _, err := Calculate(p); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestCalculateAcceptsValidBackup(t *testing.T) {
	p := baseParams()
	backup := uint64(1024)
	p.BackupOffset = &backup
	p.MediumCapacity = 2048
	if _, err := Calculate(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPagePad(t *testing.T) {
	if got := PagePad(256, 2); got != 254 {
		t.Fatalf("PagePad = %d, want 254", got)
	}
}
