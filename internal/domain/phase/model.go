package phase

// Phase is a scoring window of the season, e.g. "Overall" or a month.
// Phase 1 always spans the whole season.
type Phase struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	StartEvent int    `json:"start_event"`
	StopEvent  int    `json:"stop_event"`
}

// Contains reports whether the gameweek falls inside the phase window.
func (p Phase) Contains(gw int) bool {
	return gw >= p.StartEvent && gw <= p.StopEvent
}
