package session

// breakState is the state of the blank-row policy while scanning a sheet.
type breakState int

const (
	stateScanning breakState = iota
	stateBreakSeen
)

func (s breakState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateBreakSeen:
		return "break_seen"
	default:
		return "unknown"
	}
}

// rowAction is what the extractor does with the current row.
type rowAction int

const (
	actionSong rowAction = iota
	actionBreak
	actionStop
)

// breakPolicy treats the first blank row as the interval and the next blank
// row as the end of the log; trailing blank rows never become events.
type breakPolicy struct {
	state breakState
}

func (p *breakPolicy) next(empty bool) rowAction {
	if !empty {
		return actionSong
	}
	switch p.state {
	case stateScanning:
		p.state = stateBreakSeen
		return actionBreak
	case stateBreakSeen:
		return actionStop
	default:
		return actionStop
	}
}
