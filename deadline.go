package udpsock

import "time"

// Deadline is an optional absolute point in time after which a blocking
// operation aborts with KindOperationTimedOut. The zero value is Never.
type Deadline struct {
	at  time.Time
	set bool
}

// Never is the absence of a deadline.
var Never = Deadline{}

// At returns a deadline at t. At(time.Time{}) is a deadline in the past,
// not Never.
func At(t time.Time) Deadline {
	return Deadline{at: t, set: true}
}

// After returns a deadline d from now.
func After(d time.Duration) Deadline {
	return At(time.Now().Add(d))
}

// Time returns the deadline and whether one is set.
func (d Deadline) Time() (time.Time, bool) {
	return d.at, d.set
}

// IsNever reports whether d is the absence of a deadline.
func (d Deadline) IsNever() bool {
	return !d.set
}

func (d Deadline) String() string {
	if !d.set {
		return "never"
	}
	return d.at.Format(time.RFC3339Nano)
}

// expired is what the runtime receives for a set deadline whose time is the
// zero value, which the runtime would otherwise read as "no deadline".
var expired = time.Unix(1, 0)

// runtimeDeadline converts d to the runtime convention where the zero time
// means no deadline.
func (d Deadline) runtimeDeadline() time.Time {
	if !d.set {
		return time.Time{}
	}
	if d.at.IsZero() {
		return expired
	}
	return d.at
}
