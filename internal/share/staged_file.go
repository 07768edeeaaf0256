package share

import (
	"sync/atomic"
)

// State is the lifecycle position of a StagedFile.
type State int32

const (
	StatePending State = iota
	StateWritten
	StatePresented
	StateReleased
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateWritten:
		return "written"
	case StatePresented:
		return "presented"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// StagedFile describes one payload written into the staging directory.
type StagedFile struct {
	// Name is the caller supplied name, kept for display only.
	Name          string `json:"name"`
	SanitizedName string `json:"sanitizedName"`
	UniqueName    string `json:"uniqueName"`
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	Digest        string `json:"digest"`
	MIMEType      string `json:"mimeType"`

	state atomic.Int32
}

// State returns the current lifecycle state.
func (f *StagedFile) State() State {
	return State(f.state.Load())
}

// markPresented moves Written to Presented. Any other state is left alone.
func (f *StagedFile) markPresented() bool {
	return f.state.CompareAndSwap(int32(StateWritten), int32(StatePresented))
}

// markReleased moves the file to Released and reports whether this call did
// the transition.
func (f *StagedFile) markReleased() bool {
	for {
		cur := f.state.Load()
		if State(cur) == StateReleased {
			return false
		}
		if f.state.CompareAndSwap(cur, int32(StateReleased)) {
			return true
		}
	}
}
