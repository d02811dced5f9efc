package fault

import "testing"

func TestAlwaysTriggerWhenProbabilityZero(t *testing.T) {
	r := NewRegistry(1)
	r.Configure(Config{Kind: BitFlipSingle, Enabled: true, TargetBlockID: AllBlocks})
	data := []byte{0x00, 0x11}
	if !r.HookAfterRead(1, data) {
		t.Fatalf("expected fault to trigger with probability 0 (always)")
	}
	if data[0] != 0x01 {
		t.Fatalf("expected bit 0 flipped, got %#x", data[0])
	}
}

func TestTriggerCountLimitStopsFiring(t *testing.T) {
	r := NewRegistry(1)
	r.Configure(Config{Kind: BitFlipSingle, Enabled: true, TargetBlockID: AllBlocks, TriggerCountLimit: 1})
	data := []byte{0x00}
	if !r.HookAfterRead(1, data) {
		t.Fatalf("expected first trigger")
	}
	data[0] = 0x00
	if r.HookAfterRead(1, data) {
		t.Fatalf("expected no trigger after limit reached")
	}
}

func TestTargetBlockFiltering(t *testing.T) {
	r := NewRegistry(1)
	r.Configure(Config{Kind: RAMCorrupt, Enabled: true, TargetBlockID: 5})
	data := []byte{0x11, 0x22}
	if r.HookRAMMirror(3, data) {
		t.Fatalf("fault should not target block 3")
	}
	if !r.HookRAMMirror(5, data) {
		t.Fatalf("fault should target block 5")
	}
	for _, b := range data {
		if b != 0xAA {
			t.Fatalf("expected 0xAA corruption, got %#x", b)
		}
	}
}

func TestCRCInvert(t *testing.T) {
	r := NewRegistry(1)
	r.Configure(Config{Kind: CRCInvert, Enabled: true, TargetBlockID: AllBlocks})
	got, fired := r.HookCRC(0x1234)
	if !fired || got != ^uint32(0x1234) {
		t.Fatalf("expected inverted crc, got %#x fired=%v", got, fired)
	}
}

func TestDisabledNeverFires(t *testing.T) {
	r := NewRegistry(1)
	r.Configure(Config{Kind: QueueOverflow, Enabled: false})
	if r.HookEnqueue() {
		t.Fatalf("disabled fault should never fire")
	}
}

func TestDeterministicReplay(t *testing.T) {
	newR := func() *Registry {
		r := NewRegistry(42)
		r.Configure(Config{Kind: BitFlipSingle, Enabled: true, TargetBlockID: AllBlocks, ProbabilityPercent: 50})
		return r
	}
	a, b := newR(), newR()
	for i := 0; i < 20; i++ {
		da, db := []byte{0}, []byte{0}
		if a.HookAfterRead(1, da) != b.HookAfterRead(1, db) {
			t.Fatalf("same seed diverged at iteration %d", i)
		}
	}
}
