package views

import "fmt"

// Phase is the view state of a weather component.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseData
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseData:
		return "data"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type Event int

const (
	EventLoaded Event = iota
	EventFailed
	EventRetry
	EventRefresh
)

func (e Event) String() string {
	switch e {
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	case EventRetry:
		return "retry"
	case EventRefresh:
		return "refresh"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Next applies e to p. Loading ends in data or error; retry leaves error
// and refresh leaves data, both back to loading.
func (p Phase) Next(e Event) (Phase, error) {
	switch {
	case p == PhaseLoading && e == EventLoaded:
		return PhaseData, nil
	case p == PhaseLoading && e == EventFailed:
		return PhaseError, nil
	case p == PhaseError && e == EventRetry:
		return PhaseLoading, nil
	case p == PhaseData && e == EventRefresh:
		return PhaseLoading, nil
	}
	return p, fmt.Errorf("invalid transition %s on %s", p, e)
}

// Settle is the phase a loading component lands in after its fetch.
func Settle(err error) Phase {
	ev := EventLoaded
	if err != nil {
		ev = EventFailed
	}
	next, _ := PhaseLoading.Next(ev)
	return next
}

func (p Phase) IsLoading() bool { return p == PhaseLoading }
func (p Phase) IsData() bool    { return p == PhaseData }
func (p Phase) IsError() bool   { return p == PhaseError }
