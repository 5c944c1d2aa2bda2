// Package spreadsheet converts projects, GTM plans and characteristics to and from xlsx workbooks.
//
// Import never trusts column positions: headers are matched by name, case-insensitively,
// against localized and English aliases. Parsing returns candidate entities plus ImportError
// values; it never writes to the store.
package spreadsheet

import (
	"time"

	"go.uber.org/zap"
)

// Codec exports and imports workbooks
type Codec struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewCodec creates a codec
func NewCodec(logger *zap.Logger) *Codec {
	return &Codec{logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source used for imported comments without a date
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}
