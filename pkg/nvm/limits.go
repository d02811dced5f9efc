package nvm

// Ceilings kept deliberately small and explicit, matching slotcache's
// limits.go convention of a single file of named bounds.
const (
	// MaxBlocks bounds the block registry. It is larger than
	// JobQueueCapacity, so the queue can be filled with single-block jobs
	// for distinct blocks.
	MaxBlocks = 64

	// JobQueueCapacity bounds the job queue, matching NVM_JOB_QUEUE_SIZE.
	JobQueueCapacity = 32

	// DefaultPageSize is the EEPROM program granularity assumed when a
	// medium does not report one.
	DefaultPageSize = 256

	// SeqlockMaxRetries bounds a RAM-mirror reader's retry loop before it
	// gives up and reports ErrSeqlockTorn, matching SEQLOCK_MAX_RETRIES.
	SeqlockMaxRetries = 1000

	// ReadBlockTimeoutMs / WriteBlockTimeoutMs / ReadAllTimeoutMs /
	// WriteAllTimeoutMs / DefaultMaxRetries match the timeout and retry
	// budgets NvM_ReadBlock/WriteBlock/ReadAll/WriteAll assign their jobs.
	ReadBlockTimeoutMs  = 2000
	WriteBlockTimeoutMs = 3000
	ReadAllTimeoutMs    = 5000
	WriteAllTimeoutMs   = 10000
	DefaultMaxRetries   = 3
)
