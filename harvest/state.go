package harvest

// State is a step of the pagination state machine.
type State int

// Harvest states. Done and Stalled are terminal.
const (
	Navigating State = iota
	Scrolling
	Settling
	LocatingNext
	Clicking
	Done
	Stalled
)

func (s State) String() string {
	switch s {
	case Navigating:
		return "navigating"
	case Scrolling:
		return "scrolling"
	case Settling:
		return "settling"
	case LocatingNext:
		return "locating_next"
	case Clicking:
		return "clicking"
	case Done:
		return "done"
	case Stalled:
		return "stalled"
	}
	return "unknown"
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Done || s == Stalled
}
