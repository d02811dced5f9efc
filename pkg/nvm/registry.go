package nvm

import (
	"fmt"
	"sync"

	"github.com/nvmctl/nvm/internal/layout"
)

// registry holds registered blocks plus their RAM mirrors, keyed by block
// ID. Grounded on slotcache/lock.go's registry-entry pattern, simplified
// to a single in-process map since the NVM core has no cross-process
// identity to track.
//
// Locking architecture: Manager.crit (the interrupt gate) is held around
// job queue mutation, and jobQueue.mu guards the queue itself;
// Manager.mu guards per-block results and diagnostics; registry.mu guards
// block registration/config; each block's mirror.meta is its own seqlock,
// lock-free for readers. Lock order when more than one is held:
// Manager.crit or Manager.mu -> jobQueue.mu. registry.mu is never held
// together with another mutex, and mirrors are atomic only (never block).
type registry struct {
	mu      sync.RWMutex
	order   []uint8
	blocks  map[uint8]*BlockConfig
	mirrors map[uint8]*mirror
	spans   map[uint8][][2]uint64
}

func newRegistry() *registry {
	return &registry{
		blocks:  make(map[uint8]*BlockConfig),
		mirrors: make(map[uint8]*mirror),
		spans:   make(map[uint8][][2]uint64),
	}
}

// register inserts cfg, rejecting it if its slot regions (given by
// layoutParams) overlap any already-registered block's regions. Overlap
// is checked across the whole registry, not just against the per-block
// layout.Calculate result, since that only validates a block against
// itself (primary vs backup vs dataset span).
func (r *registry) register(cfg BlockConfig, withVersionedMirror bool, layoutParams layout.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.blocks) >= MaxBlocks {
		return ErrBlockFull
	}
	if _, exists := r.blocks[cfg.BlockID]; exists {
		return ErrInvalidConfig
	}
	newSpans := layout.Spans(layoutParams)
	for id, existing := range r.spans {
		for _, a := range newSpans {
			for _, b := range existing {
				if layout.Overlaps(a[0], a[1]-a[0], b[0], b[1]-b[0]) {
					return fmt.Errorf("block %d overlaps block %d: %w", cfg.BlockID, id, ErrOverlap)
				}
			}
		}
	}
	cfg.State = Uninitialized
	cfg.EraseCount = 0
	b := cfg
	r.blocks[cfg.BlockID] = &b
	r.mirrors[cfg.BlockID] = newMirror(int(cfg.BlockSize), withVersionedMirror)
	r.spans[cfg.BlockID] = newSpans
	r.order = append(r.order, cfg.BlockID)
	return nil
}

func (r *registry) get(id uint8) (*BlockConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blocks[id]
	return b, ok
}

func (r *registry) mirrorFor(id uint8) (*mirror, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mirrors[id]
	return m, ok
}

// orderedIDs returns registered block IDs in registration order, the
// iteration order ReadAll/WriteAll dispatch uses.
func (r *registry) orderedIDs() []uint8 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint8, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}
