package fault

// HookBeforeRead has no injectable fault in the original catalogue; kept
// for symmetry with the other hook points and future faults.
func (r *Registry) HookBeforeRead(addr uint64, length int) bool {
	return false
}

// HookAfterRead applies BitFlipSingle/BitFlipMulti to data in place,
// returning true if a fault fired.
func (r *Registry) HookAfterRead(blockID uint8, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c := r.find(BitFlipSingle); c != nil && r.targets(c, blockID) && r.shouldTrigger(c) {
		data[0] ^= 0x01
		r.mark(c)
		return true
	}
	if c := r.find(BitFlipMulti); c != nil && r.targets(c, blockID) && r.shouldTrigger(c) {
		n := len(data)
		if n > 4 {
			n = 4
		}
		for i := 0; i < n; i++ {
			data[i] ^= 0xFF
		}
		r.mark(c)
		return true
	}
	return false
}

// HookBeforeWrite returns true if the write (erase phase) should be
// blocked to simulate an erase timeout.
func (r *Registry) HookBeforeWrite(addr uint64, length int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(TimeoutErase); c != nil && r.shouldTrigger(c) {
		r.mark(c)
		return true
	}
	return false
}

// HookAfterWrite returns true to simulate power loss immediately after a
// program completes physically but before state bookkeeping finishes.
func (r *Registry) HookAfterWrite(addr uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(PowerLossPageProgram); c != nil && r.shouldTrigger(c) {
		r.mark(c)
		return true
	}
	return false
}

// HookCRC inverts sum if CRCInvert fires. Only the low bits callers
// actually serialize are meaningful, so a full-width invert is safe
// regardless of the checksum's nominal size.
func (r *Registry) HookCRC(sum uint32) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(CRCInvert); c != nil && r.shouldTrigger(c) {
		r.mark(c)
		return ^sum, true
	}
	return sum, false
}

// HookVerify corrupts actual[0] to force a write-verify mismatch.
func (r *Registry) HookVerify(addr uint64, expected, actual []byte) bool {
	if len(actual) == 0 || len(expected) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(WriteVerifyFail); c != nil && r.shouldTrigger(c) {
		actual[0] = ^expected[0]
		r.mark(c)
		return true
	}
	return false
}

// HookRAMMirror corrupts data (0xAA fill) for the targeted block.
func (r *Registry) HookRAMMirror(blockID uint8, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.find(RAMCorrupt)
	if c == nil || !r.targets(c, blockID) || !r.shouldTrigger(c) {
		return false
	}
	for i := range data {
		data[i] = 0xAA
	}
	r.mark(c)
	return true
}

// HookEnqueue reports whether a simulated QueueOverflow fault should
// force the enqueue to fail regardless of actual queue occupancy.
func (r *Registry) HookEnqueue() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(QueueOverflow); c != nil && r.shouldTrigger(c) {
		r.mark(c)
		return true
	}
	return false
}

// HookTickTimeout simulates MainFunction running over its time budget.
func (r *Registry) HookTickTimeout() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(TimeoutMainFunction); c != nil && r.shouldTrigger(c) {
		r.mark(c)
		return true
	}
	return false
}
