package pushflow

import (
	"time"
)

// Version
const (
	Version = "v0.1.0"
)

// Default values
const (
	// HookTimeout bounds a single error hook invocation.
	HookTimeout = time.Second * 30
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatLTSV = "ltsv"
	LogFormatJSON = "json"
)
