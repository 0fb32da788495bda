package runctl

import (
	"fmt"
	"strings"

	"github.com/tphakala/prodcon/internal/errors"
)

// Role identifies one of the two tasks.
type Role int

const (
	RoleProducer Role = iota + 1
	RoleConsumer
)

// Roles lists both roles in report order.
var Roles = []Role{RoleProducer, RoleConsumer}

func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "Producer"
	case RoleConsumer:
		return "Consumer"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// PrintMode selects which roles report transfers. Values match the numbers
// offered at the prompt.
type PrintMode int

const (
	PrintProducer PrintMode = iota + 1
	PrintConsumer
	PrintBoth
)

// Prints reports whether role reports its transfers under m.
func (m PrintMode) Prints(role Role) bool {
	switch m {
	case PrintProducer:
		return role == RoleProducer
	case PrintConsumer:
		return role == RoleConsumer
	case PrintBoth:
		return true
	default:
		return false
	}
}

// Valid reports whether m is one of the defined modes.
func (m PrintMode) Valid() bool {
	return m >= PrintProducer && m <= PrintBoth
}

func (m PrintMode) String() string {
	switch m {
	case PrintProducer:
		return "producer"
	case PrintConsumer:
		return "consumer"
	case PrintBoth:
		return "both"
	default:
		return fmt.Sprintf("PrintMode(%d)", int(m))
	}
}

// Mode selects the termination rule. Values match the numbers offered at
// the prompt.
type Mode int

const (
	ModeForever Mode = iota + 1
	ModeUntilSequence
	ModeExactlyN
)

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModeForever && m <= ModeExactlyN
}

func (m Mode) String() string {
	switch m {
	case ModeForever:
		return "forever"
	case ModeUntilSequence:
		return "until-sequence"
	case ModeExactlyN:
		return "exactly-n"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// CountBy selects which roles advance the iteration counter and which roles
// compare their transfers against the stop sequence.
type CountBy string

const (
	// CountAuto picks the printing role; with both printing the producer
	// counts and the consumer drains what it produced.
	CountAuto CountBy = "auto"

	CountProducer CountBy = "producer"
	CountConsumer CountBy = "consumer"

	// CountShared lets both roles advance one counter and both observe.
	// A stop may then land while one role is already committed to a
	// transfer, so fewer than n reports per role are possible.
	CountShared CountBy = "shared"
)

// ParseCountBy converts a configuration string, case-insensitively.
// The empty string means CountAuto.
func ParseCountBy(s string) (CountBy, error) {
	switch c := CountBy(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CountAuto, nil
	case CountAuto, CountProducer, CountConsumer, CountShared:
		return c, nil
	default:
		return "", errors.Newf("unknown count-by value %q", s).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Context("allowed", "auto, producer, consumer, shared").
			Build()
	}
}

// participants resolves which roles count and observe.
func (c CountBy) participants(pm PrintMode) map[Role]bool {
	switch c {
	case CountProducer:
		return map[Role]bool{RoleProducer: true}
	case CountConsumer:
		return map[Role]bool{RoleConsumer: true}
	case CountShared:
		return map[Role]bool{RoleProducer: true, RoleConsumer: true}
	}
	if pm == PrintConsumer {
		return map[Role]bool{RoleConsumer: true}
	}
	return map[Role]bool{RoleProducer: true}
}

// State is the controller's lifecycle state.
type State int

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}
