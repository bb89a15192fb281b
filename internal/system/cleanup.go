package system

import (
	"time"

	"github.com/piefight/server/internal/core/ecs"
	coresys "github.com/piefight/server/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end
// and, when enabled, verifies pool bookkeeping afterwards. Phase 5 (Cleanup).
type CleanupSystem struct {
	world  *ecs.World
	stores *Stores
	check  bool
	log    *zap.Logger
}

func NewCleanupSystem(world *ecs.World, stores *Stores, check bool, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, stores: stores, check: check, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
	if !s.check {
		return
	}
	if err := s.world.Entities().Check(); err != nil {
		s.log.Error("entity pool corrupted", zap.Error(err))
	}
	if err := s.stores.Check(); err != nil {
		s.log.Error("component store corrupted", zap.Error(err))
	}
}
