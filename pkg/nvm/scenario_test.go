package nvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPriorityOrderingAcrossBlocks enqueues writes in the reverse of
// priority order and checks that OnJobEnd fires in priority order once
// MainFunction drains the queue.
func TestPriorityOrderingAcrossBlocks(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	priorities := []uint8{5, 10, 15, 20}
	for i, p := range priorities {
		require.NoError(t, m.RegisterBlock(BlockConfig{
			BlockID: uint8(100 + i), BlockSize: 16, Type: Native,
			Priority: p, EepromOffset: uint64(i) * 4096,
		}))
	}

	var order []uint8
	m.OnJobEnd = func(blockID uint8) { order = append(order, blockID) }

	for i := len(priorities) - 1; i >= 0; i-- {
		require.NoError(t, m.WriteBlock(uint8(100+i), make([]byte, 16)))
	}
	m.MainFunction(0)

	require.Equal(t, []uint8{100, 101, 102, 103}, order)
}

// TestImmediatePreemption submits a low-priority write first, then an
// immediate high-priority write before the tick runs; the immediate job
// must complete first despite enqueuing second.
func TestImmediatePreemption(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 200, BlockSize: 16, Type: Native, Priority: 20, EepromOffset: 0,
	}))
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 201, BlockSize: 16, Type: Native, Priority: 0, Immediate: true, EepromOffset: 4096,
	}))

	var order []uint8
	m.OnJobEnd = func(blockID uint8) { order = append(order, blockID) }

	require.NoError(t, m.WriteBlock(200, make([]byte, 16)))
	require.NoError(t, m.WriteBlock(201, make([]byte, 16)))
	m.MainFunction(0)

	require.Equal(t, []uint8{201, 200}, order)
}

// TestQueueOverflowLeavesExistingEntriesUntouched fills the queue to
// JobQueueCapacity then confirms the next enqueue is rejected without
// disturbing the already-queued jobs.
func TestQueueOverflowLeavesExistingEntriesUntouched(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	for i := 0; i < JobQueueCapacity+1; i++ {
		require.NoError(t, m.RegisterBlock(BlockConfig{
			BlockID: uint8(i), BlockSize: 16, Type: Native, EepromOffset: uint64(i) * 4096,
		}))
	}

	for i := 0; i < JobQueueCapacity; i++ {
		require.NoError(t, m.WriteBlock(uint8(i), make([]byte, 16)))
	}
	err := m.WriteBlock(uint8(JobQueueCapacity), make([]byte, 16))
	require.ErrorIs(t, err, ErrQueueFull)
	require.Equal(t, JobQueueCapacity, m.queue.depth())

	m.MainFunction(0)
	for i := 0; i < JobQueueCapacity; i++ {
		res, err := m.GetJobResult(uint8(i))
		require.NoError(t, err)
		require.Equal(t, ReqOK, res)
	}
	_, err = m.GetJobResult(uint8(JobQueueCapacity))
	require.ErrorIs(t, err, ErrUnknownBlock)
}
