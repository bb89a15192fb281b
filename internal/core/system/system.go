package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: advance the arena clock
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: throws, pie flight, hits, scoring
	PhasePostUpdate              // 3: prop shake springs
	PhasePersist                 // 4: snapshot flush
	PhaseCleanup                 // 5: destroy queued entities
)

var phaseNames = [...]string{"input", "pre-update", "update", "post-update", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
