package entities

import "time"

// Key configuration bounds. Rate limits are requests per window.
const (
	KeyPrefix        = "ak_"
	DefaultRateLimit = 5
	MinRateLimit     = 1
	MaxRateLimit     = 1000
)

// APIKey is one issued credential. Key is the secret bearer value; Owner
// identifies who it was minted for.
type APIKey struct {
	Key       string
	Owner     string
	RateLimit int
	IsActive  bool
	CreatedAt time.Time
	LastUsed  *time.Time
}

// Decision is the outcome of one admission check. Reset is the unix
// instant the window rolls over; RetryAfter carries seconds and is only
// set on denials.
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	Remaining  int
	Reset      int64
	RetryAfter int64
}
