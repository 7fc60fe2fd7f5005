package host

import "time"

// Config tunes the execution driver.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 means the
	// default of 64 pages (4MiB).
	MemoryLimitPages uint32

	// ExecutionTimeout bounds one guest run. The run is aborted and
	// recorded as a wasm error when exceeded. 0 means the 2s default.
	ExecutionTimeout time.Duration

	// FeeBaseMultiplierNum/Den scale the ledger base fee for fee_base.
	// Zero values mean the default margin of 11/10.
	FeeBaseMultiplierNum uint64
	FeeBaseMultiplierDen uint64
}

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.MemoryLimitPages == 0 {
		out.MemoryLimitPages = 64
	}
	if out.ExecutionTimeout == 0 {
		out.ExecutionTimeout = 2 * time.Second
	}
	if out.FeeBaseMultiplierNum == 0 || out.FeeBaseMultiplierDen == 0 {
		out.FeeBaseMultiplierNum, out.FeeBaseMultiplierDen = 11, 10
	}
	return out
}
