package fetch

import "time"

// Policy bounds one resilient call: how many attempts to make, how long to
// wait between them, and how long each individual attempt may run. Policies
// are plain values; callers configure them per call site and never mutate a
// shared instance.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// BaseDelay seeds the linear backoff: the wait before attempt n+1 is
	// BaseDelay * n.
	BaseDelay time.Duration

	// PerAttemptTimeout caps a single attempt. Exceeding it cancels the
	// in-flight request and counts as a failed attempt.
	PerAttemptTimeout time.Duration
}

// DefaultPolicy matches the portal's page callers: three attempts, one second
// base delay, ten second attempt timeout.
var DefaultPolicy = Policy{
	MaxAttempts:       3,
	BaseDelay:         time.Second,
	PerAttemptTimeout: 10 * time.Second,
}

// normalized returns a policy safe to execute. The zero value means "use the
// defaults"; otherwise MaxAttempts is floored at one attempt and negative
// durations are treated as zero.
func (p Policy) normalized() Policy {
	if p == (Policy{}) {
		return DefaultPolicy
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.PerAttemptTimeout < 0 {
		p.PerAttemptTimeout = 0
	}
	return p
}
