package component

import (
	"time"

	"github.com/piefight/server/internal/core/ecs"
)

// VictoryState is a character's result for the current round.
type VictoryState int8

const (
	ResultUnknown VictoryState = iota
	ResultWinner
	ResultLoser
)

// Stat indexes a per-round counter in Character.Stats.
type Stat int

const (
	StatThrows Stat = iota
	StatHits
	StatMisses
	StatHitsTaken
	NumStats
)

// Character stores the fighting state for an entity.
// Pure data, zero methods: all mutations happen in System functions.
type Character struct {
	RosterID  int32
	Name      string
	Health    int
	MaxHealth int
	PieDamage int        // total damage taken this round
	Target    ecs.Entity // may go stale when the target is destroyed
	Score     int
	Stats     [NumStats]int
	Victory   VictoryState
	NextThrow time.Duration // arena clock time of the next allowed throw
}
