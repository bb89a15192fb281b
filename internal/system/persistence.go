package system

import (
	"context"
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"github.com/piefight/server/internal/persist"
	"go.uber.org/zap"
)

// SnapshotWriter stores character snapshots. *persist.SnapshotRepo
// implements it.
type SnapshotWriter interface {
	SaveBatch(ctx context.Context, rows []persist.SnapshotRow) error
}

// PersistenceSystem snapshots every character every interval ticks. Rows
// whose content has not changed since the last save are skipped. Phase 4
// (Persist).
type PersistenceSystem struct {
	stores   *Stores
	writer   SnapshotWriter
	log      *zap.Logger
	interval int
	ticks    uint64
	sinceRun int
	saved    map[ecs.Entity][32]byte
}

func NewPersistenceSystem(stores *Stores, bus *event.Bus, writer SnapshotWriter, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{
		stores:   stores,
		writer:   writer,
		log:      log,
		interval: intervalTicks,
		saved:    make(map[ecs.Entity][32]byte),
	}
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		delete(s.saved, ev.Entity)
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.ticks++
	s.sinceRun++
	if s.sinceRun < s.interval {
		return
	}
	s.sinceRun = 0
	s.save(context.Background(), true)
}

// Flush saves every character regardless of digests. Called on shutdown.
func (s *PersistenceSystem) Flush(ctx context.Context) {
	s.save(ctx, false)
}

func (s *PersistenceSystem) save(ctx context.Context, changedOnly bool) {
	var (
		rows    []persist.SnapshotRow
		digests []ecs.Entity
	)
	s.stores.Characters.Each(func(e ecs.Entity, c *component.Character) {
		row := s.row(e, c)
		if changedOnly {
			if prev, ok := s.saved[e]; ok && prev == persist.Digest(row) {
				return
			}
		}
		rows = append(rows, row)
		digests = append(digests, e)
	})
	if len(rows) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.writer.SaveBatch(ctx, rows); err != nil {
		s.log.Error("snapshot save failed", zap.Int("rows", len(rows)), zap.Error(err))
		return
	}
	for i, e := range digests {
		s.saved[e] = persist.Digest(rows[i])
	}
	s.log.Debug("snapshot saved", zap.Int("rows", len(rows)), zap.Uint64("tick", s.ticks))
}

func (s *PersistenceSystem) row(e ecs.Entity, c *component.Character) persist.SnapshotRow {
	row := persist.SnapshotRow{
		EntityIndex: uint32(e.Index()),
		Generation:  uint64(e.Generation()),
		Tick:        s.ticks,
		RosterID:    c.RosterID,
		Name:        c.Name,
		Health:      c.Health,
		Score:       c.Score,
	}
	if tr, ok := s.stores.Transforms.Get(e); ok {
		row.Position = tr.Position
	}
	return row
}

// PublishDestroys emits EntityDestroyed on bus for every entity w releases.
func PublishDestroys(w *ecs.World, bus *event.Bus) {
	w.OnDestroy(func(e ecs.Entity) {
		event.Emit(bus, event.EntityDestroyed{Entity: e})
	})
}
