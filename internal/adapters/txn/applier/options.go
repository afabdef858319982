package applier

import (
	"github.com/okian/vouch/pkg/logger"
)

// Option applies a configuration option to the Applier.
type Option func(*Applier)

// WithJournal attaches a journal for accepted mutations. Without one the
// ledger is memory-only.
func WithJournal(j Journal) Option {
	return func(a *Applier) {
		if j != nil {
			a.journal = j
		}
	}
}

// WithLogger sets a custom logger for the applier.
func WithLogger(l logger.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}
