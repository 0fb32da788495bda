package pipeline

import (
	"fmt"
	"time"

	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/runctl"
)

// TaskResult is what a task reports when it returns. Err is nil for a task
// that stopped because of the run policy or because its peer finished.
type TaskResult struct {
	Role      runctl.Role
	Transfers int
	Reported  int
	Err       error
}

// Interrupted reports whether the task ended because its context was
// cancelled.
func (r TaskResult) Interrupted() bool {
	return r.Err != nil && errors.IsCategory(r.Err, errors.CategoryCancellation)
}

// Failed reports whether the task ended with an error other than
// cancellation.
func (r TaskResult) Failed() bool {
	return r.Err != nil && !r.Interrupted()
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Producer  TaskResult
	Consumer  TaskResult
	StoppedBy runctl.Role // zero if the run never reached Stopped
	Duration  time.Duration
}

// Interrupted reports whether the run ended by context cancellation.
func (s *Summary) Interrupted() bool {
	return s.Producer.Interrupted() || s.Consumer.Interrupted()
}

// Result returns the result recorded for role.
func (s *Summary) Result(role runctl.Role) TaskResult {
	if role == runctl.RoleConsumer {
		return s.Consumer
	}
	return s.Producer
}

// String implements fmt.Stringer for log output.
func (s *Summary) String() string {
	return fmt.Sprintf("run %s: produced=%d consumed=%d duration=%s",
		s.RunID, s.Producer.Transfers, s.Consumer.Transfers, s.Duration.Round(time.Millisecond))
}
