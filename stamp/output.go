package stamp

import (
	"fmt"
	"reflect"
)

// OutputStamper selects the policy used to fingerprint a task's result.
type OutputStamper int

const (
	// OutputEquals stamps the full result value. A dependency is consistent
	// only when the required task still produces an equal result.
	OutputEquals OutputStamper = iota
	// OutputInconsequential ignores the result entirely. The dependency is
	// consistent as long as the required task itself is consistent; useful
	// when only a task's side effects matter.
	OutputInconsequential
)

// String returns the stamper's name for logs and error messages.
func (s OutputStamper) String() string {
	switch s {
	case OutputEquals:
		return "equals"
	case OutputInconsequential:
		return "inconsequential"
	default:
		return fmt.Sprintf("OutputStamper(%d)", int(s))
	}
}

// OutputStamp is a fingerprint of one task result, covering both the output
// value and the task's own error. Errors are compared by message: a task
// that fails the same way twice is unchanged.
type OutputStamp struct {
	stamper OutputStamper
	output  any
	failed  bool
	errMsg  string
}

// Stamp fingerprints a task result under this policy.
func (s OutputStamper) Stamp(output any, err error) OutputStamp {
	switch s {
	case OutputInconsequential:
		return OutputStamp{stamper: s}
	default:
		stamp := OutputStamp{stamper: s, output: output}
		if err != nil {
			stamp.failed = true
			stamp.errMsg = err.Error()
		}
		return stamp
	}
}

// Equal reports whether the two stamps fingerprint equal task results.
// Output values are compared with reflect.DeepEqual, so outputs must be
// plain data values.
func (s OutputStamp) Equal(other OutputStamp) bool {
	if s.stamper != other.stamper || s.failed != other.failed || s.errMsg != other.errMsg {
		return false
	}
	return reflect.DeepEqual(s.output, other.output)
}

// String renders the stamp for logs and tracker output.
func (s OutputStamp) String() string {
	switch s.stamper {
	case OutputInconsequential:
		return "inconsequential"
	default:
		if s.failed {
			return fmt.Sprintf("equals(err: %s)", s.errMsg)
		}
		return fmt.Sprintf("equals(%v)", s.output)
	}
}
