package nvm

import (
	"sync"

	"github.com/nvmctl/nvm/internal/fault"
	"github.com/nvmctl/nvm/internal/layout"
	"github.com/nvmctl/nvm/internal/medium"
)

// Logger is the minimal leveled sink Manager reports through, bridging
// the original firmware's LOG_DEBUG/INFO/WARN/ERROR taxonomy without
// forcing a concrete implementation on embedders. NewManager uses a no-op
// logger when Options.Logger is nil.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// Manager is the NVM core's public API, constructed (never a package
// singleton) so multiple independent instances can coexist in one process.
type Manager struct {
	mu      sync.Mutex
	crit    sync.Mutex // enter_critical/leave_critical interrupt gate
	reg     *registry
	queue   *jobQueue
	shim    *shim
	log     Logger
	results map[uint8]RequestResult
	diag    Diagnostics

	withVersionedMirror bool

	OnJobEnd   func(blockID uint8)
	OnJobError func(blockID uint8)

	initialized bool
}

// Options configures a new Manager.
type Options struct {
	Driver          medium.Driver
	Faults          *fault.Registry
	Logger          Logger
	VersionedMirror bool // use the sequence+version seqlock flavor
}

// NewManager constructs an uninitialized Manager; call Init before use.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Faults == nil {
		opts.Faults = fault.NewRegistry(1)
	}
	return &Manager{
		reg:                 newRegistry(),
		queue:               &jobQueue{},
		shim:                &shim{drv: opts.Driver, faults: opts.Faults},
		log:                 opts.Logger,
		results:             make(map[uint8]RequestResult),
		withVersionedMirror: opts.VersionedMirror,
	}
}

// EnterCritical / LeaveCritical model the interrupt gate around queue
// mutation spec.md's concurrency model calls for.
func (m *Manager) EnterCritical() { m.crit.Lock() }
func (m *Manager) LeaveCritical() { m.crit.Unlock() }

// Init resets all internal state, matching NvM_Init.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg = newRegistry()
	m.queue = &jobQueue{}
	m.results = make(map[uint8]RequestResult)
	m.diag = Diagnostics{}
	m.initialized = true
	m.log.Infof("nvm: initialized")
	return nil
}

// RegisterBlock validates and records a new block, matching
// NvM_RegisterBlock (layout validation + logging).
func (m *Manager) RegisterBlock(cfg BlockConfig) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	var backup *uint64
	if cfg.Type == Redundant {
		backup = &cfg.RedundantOffset
	}
	params := layout.Params{
		BlockSize:      uint32(cfg.BlockSize),
		CrcKind:        cfg.CrcKind,
		SlotSize:       slotSizeFor(cfg),
		PageSize:       m.shim.drv.Geometry().PageSize,
		PrimaryOffset:  cfg.EepromOffset,
		BackupOffset:   backup,
		DatasetCount:   int(cfg.DatasetCount),
		MediumCapacity: m.shim.drv.Geometry().Capacity,
	}
	l, err := layout.Calculate(params)
	if err != nil {
		m.log.Errorf("nvm: block %d layout invalid: %v", cfg.BlockID, err)
		return ErrInvalidConfig
	}
	if cfg.Type == Dataset && cfg.DatasetSlotSize == 0 {
		cfg.DatasetSlotSize = l.SlotSize
	}

	if err := m.reg.register(cfg, m.withVersionedMirror, params); err != nil {
		return err
	}
	m.log.Infof("nvm: registered block %d (type=%d size=%d)", cfg.BlockID, cfg.Type, cfg.BlockSize)
	m.log.Debugf("nvm: block %d layout data@%#x(%d) crc@%#x(%d)", cfg.BlockID, l.DataOffset, l.DataSize, l.CrcOffset, l.CrcSize)
	return nil
}

func slotSizeFor(cfg BlockConfig) uint32 {
	if cfg.DatasetSlotSize != 0 {
		return cfg.DatasetSlotSize
	}
	crcSize := uint32(0)
	switch cfg.CrcKind {
	case Crc8:
		crcSize = 1
	case Crc16:
		crcSize = 2
	case Crc32:
		crcSize = 4
	}
	size := uint32(cfg.BlockSize) + crcSize
	pad := uint32(256)
	if rem := size % pad; rem != 0 {
		size += pad - rem
	}
	return size
}

func (m *Manager) enqueue(j Job) error {
	m.EnterCritical()
	defer m.LeaveCritical()
	if m.shim.faults.HookEnqueue() {
		return ErrQueueFull
	}
	return m.queue.enqueue(j)
}

// ReadBlock enqueues a read job for block_id into buf, matching
// NvM_ReadBlock's timeout/retry budget.
func (m *Manager) ReadBlock(blockID uint8, buf []byte) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	b, ok := m.reg.get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	j := Job{
		Type: JobRead, BlockID: blockID, Data: buf,
		Priority: b.Priority, Immediate: b.Immediate,
		TimeoutMs: ReadBlockTimeoutMs, MaxRetries: DefaultMaxRetries,
	}
	if err := m.enqueue(j); err != nil {
		return err
	}
	m.setResult(blockID, ReqPending)
	return nil
}

// WriteBlock enqueues a write job for block_id from buf.
func (m *Manager) WriteBlock(blockID uint8, buf []byte) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	b, ok := m.reg.get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	j := Job{
		Type: JobWrite, BlockID: blockID, Data: buf,
		Priority: b.Priority, Immediate: b.Immediate,
		TimeoutMs: WriteBlockTimeoutMs, MaxRetries: DefaultMaxRetries,
	}
	if err := m.enqueue(j); err != nil {
		return err
	}
	m.setResult(blockID, ReqPending)
	return nil
}

// ReadAll enqueues a single high-priority job that, on dispatch, reads
// every registered block in registration order.
func (m *Manager) ReadAll() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	return m.enqueue(Job{
		Type: JobReadAll, BlockID: AllBlocksID, Immediate: true,
		TimeoutMs: ReadAllTimeoutMs, MaxRetries: DefaultMaxRetries,
	})
}

// WriteAll enqueues a single job that writes every non-protected block.
func (m *Manager) WriteAll() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	return m.enqueue(Job{
		Type: JobWriteAll, BlockID: AllBlocksID, Immediate: true,
		TimeoutMs: WriteAllTimeoutMs, MaxRetries: DefaultMaxRetries,
	})
}

func (m *Manager) setResult(blockID uint8, r RequestResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[blockID] = r
}

// GetJobResult reports the last known result for blockID.
func (m *Manager) GetJobResult(blockID uint8) (RequestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[blockID]
	if !ok {
		return ReqOK, ErrUnknownBlock
	}
	return r, nil
}

// GetErrorStatus reports a block's current BlockState.
func (m *Manager) GetErrorStatus(blockID uint8) (BlockState, error) {
	b, ok := m.reg.get(blockID)
	if !ok {
		return Invalid, ErrUnknownBlock
	}
	return b.State, nil
}

// SetDataIndex switches a Dataset block's active version, matching
// NvM_SetDataIndex's range validation.
func (m *Manager) SetDataIndex(blockID uint8, index uint8) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	b, ok := m.reg.get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	if b.Type != Dataset {
		return ErrNotDataset
	}
	if index >= b.DatasetCount {
		return ErrIndexRange
	}
	m.reg.mu.Lock()
	b.ActiveDatasetIndex = index
	m.reg.mu.Unlock()
	return nil
}

// GetDiagnostics returns processed/failed job counters plus the current
// and watermark queue depth.
func (m *Manager) GetDiagnostics() Diagnostics {
	m.mu.Lock()
	d := m.diag
	m.mu.Unlock()
	d.CurrentQueueDepth = uint32(m.queue.depth())
	d.MaxQueueDepth = uint32(m.queue.maxDepth())
	return d
}

// MainFunction drains the entire job queue for this tick after checking
// timeouts, matching NvM_MainFunction's while(Dequeue()==E_OK) loop (the
// spec's §9 drain-vs-single-job choice, resolved to "drain").
func (m *Manager) MainFunction(nowMs uint64) {
	if !m.initialized {
		return
	}
	m.EnterCritical()
	m.queue.checkTimeouts(nowMs)
	m.LeaveCritical()

	if m.shim.faults.HookTickTimeout() {
		return
	}

	for {
		m.EnterCritical()
		job, ok := m.queue.dequeue()
		m.LeaveCritical()
		if !ok {
			break
		}
		m.dispatch(job)
	}

	m.mu.Lock()
	m.diag.CurrentQueueDepth = uint32(m.queue.depth())
	m.mu.Unlock()
}

func (m *Manager) dispatch(job Job) {
	var err error
	switch job.Type {
	case JobRead:
		err = m.processRead(job.BlockID, job.Data)
	case JobWrite:
		err = m.processWrite(job.BlockID, job.Data)
	case JobReadAll:
		err = m.processReadAll()
	case JobWriteAll:
		err = m.processWriteAll()
	default:
		err = ErrInvalidConfig
	}

	if job.BlockID != AllBlocksID {
		if err == nil {
			m.setResult(job.BlockID, ReqOK)
		} else {
			m.setResult(job.BlockID, ReqNotOK)
		}
	}

	m.mu.Lock()
	m.diag.TotalJobsProcessed++
	if err != nil {
		m.diag.TotalJobsFailed++
	}
	m.mu.Unlock()

	if err == nil {
		m.notifyEnd(job.BlockID)
	} else {
		m.notifyError(job.BlockID)
	}
}

func (m *Manager) processRead(blockID uint8, data []byte) error {
	b, ok := m.reg.get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	return engineFor(b.Type).read(m.shim, b, data)
}

func (m *Manager) processWrite(blockID uint8, data []byte) error {
	b, ok := m.reg.get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	if b.WriteProtected {
		return ErrWriteProtected
	}
	return engineFor(b.Type).write(m.shim, b, data)
}

func (m *Manager) processReadAll() error {
	var firstErr error
	for _, id := range m.reg.orderedIDs() {
		mir, _ := m.reg.mirrorFor(id)
		scratch := make([]byte, len(mir.data))
		if err := m.processRead(id, scratch); err != nil {
			m.log.Warnf("nvm: ReadAll block %d failed", id)
			m.setResult(id, ReqNotOK)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		mir.write(scratch)
		m.setResult(id, ReqOK)
	}
	return firstErr
}

func (m *Manager) processWriteAll() error {
	var firstErr error
	for _, id := range m.reg.orderedIDs() {
		b, _ := m.reg.get(id)
		if b.WriteProtected {
			continue
		}
		mir, _ := m.reg.mirrorFor(id)
		scratch := make([]byte, len(mir.data))
		if err := mir.read(scratch, SeqlockMaxRetries); err != nil {
			m.setResult(id, ReqNotOK)
			firstErr = err
			continue
		}
		if err := m.processWrite(id, scratch); err != nil {
			m.log.Warnf("nvm: WriteAll block %d failed", id)
			m.setResult(id, ReqNotOK)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.setResult(id, ReqOK)
	}
	return firstErr
}

func (m *Manager) notifyEnd(blockID uint8) {
	m.log.Debugf("nvm: job ended for block %d", blockID)
	if m.OnJobEnd != nil {
		m.OnJobEnd(blockID)
	}
}

func (m *Manager) notifyError(blockID uint8) {
	m.log.Warnf("nvm: job error for block %d", blockID)
	if m.OnJobError != nil {
		m.OnJobError(blockID)
	}
}

// WriteMirror seqlock-writes data into blockID's RAM mirror directly,
// the entry point an application uses to stage data before WriteBlock or
// WriteAll picks it up.
func (m *Manager) WriteMirror(blockID uint8, data []byte) error {
	mir, ok := m.reg.mirrorFor(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	mir.write(data)
	return nil
}

// ReadMirror seqlock-reads blockID's RAM mirror into dst, applying the
// pre-mirror-read fault hook directly against the mirror's backing bytes
// first (simulating RAM corruption before the read, not of the caller's
// destination buffer).
func (m *Manager) ReadMirror(blockID uint8, dst []byte) error {
	mir, ok := m.reg.mirrorFor(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	m.shim.faults.HookRAMMirror(blockID, mir.data)
	return mir.read(dst, SeqlockMaxRetries)
}
