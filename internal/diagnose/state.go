package diagnose

// State is a step of the per-file lifecycle:
//
//	PENDING -> SKIPPED                         (zero-size)
//	PENDING -> PROBING -> OK                   (decodes cleanly)
//	PENDING -> PROBING -> REPAIRING -> FIXED   (some strategy succeeded)
//	PENDING -> PROBING -> REPAIRING -> FAILED
type State int

const (
	StatePending State = iota
	StateSkipped
	StateProbing
	StateOK
	StateRepairing
	StateFixed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateSkipped:
		return "SKIPPED"
	case StateProbing:
		return "PROBING"
	case StateOK:
		return "OK"
	case StateRepairing:
		return "REPAIRING"
	case StateFixed:
		return "FIXED"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateSkipped, StateOK, StateFixed, StateFailed:
		return true
	}
	return false
}
