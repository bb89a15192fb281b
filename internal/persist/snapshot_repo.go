package persist

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"
)

// SnapshotRow is the saved state of one character entity. EntityIndex and
// Generation together identify the entity across reuse of its slot.
type SnapshotRow struct {
	EntityIndex uint32
	Generation  uint64
	Tick        uint64
	RosterID    int32
	Name        string
	Health      int
	Score       int
	Position    [3]float32
}

// Digest hashes the row's content. Tick is excluded so an unchanged entity
// hashes the same from one snapshot to the next.
func Digest(r SnapshotRow) [32]byte {
	buf := make([]byte, 0, 64+len(r.Name))
	buf = binary.LittleEndian.AppendUint32(buf, r.EntityIndex)
	buf = binary.LittleEndian.AppendUint64(buf, r.Generation)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.RosterID))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(r.Health)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(r.Score)))
	for _, f := range r.Position {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	buf = append(buf, r.Name...)
	return blake2b.Sum256(buf)
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SaveBatch upserts rows in a single transaction.
func (r *SnapshotRepo) SaveBatch(ctx context.Context, rows []SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		digest := Digest(row)
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_snapshots
			   (entity_index, generation, tick, roster_id, name, health, score, pos_x, pos_y, pos_z, digest)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (entity_index, generation) DO UPDATE SET
			   tick = EXCLUDED.tick, health = EXCLUDED.health, score = EXCLUDED.score,
			   pos_x = EXCLUDED.pos_x, pos_y = EXCLUDED.pos_y, pos_z = EXCLUDED.pos_z,
			   digest = EXCLUDED.digest, saved_at = now()`,
			int64(row.EntityIndex), int64(row.Generation), int64(row.Tick), row.RosterID, row.Name,
			row.Health, row.Score, row.Position[0], row.Position[1], row.Position[2], digest[:],
		); err != nil {
			return fmt.Errorf("snapshot insert %d:%d: %w", row.EntityIndex, row.Generation, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot commit: %w", err)
	}
	return nil
}

// LoadSince returns every snapshot row saved at or after tick.
func (r *SnapshotRepo) LoadSince(ctx context.Context, tick uint64) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity_index, generation, tick, roster_id, name, health, score, pos_x, pos_y, pos_z
		 FROM entity_snapshots WHERE tick >= $1 ORDER BY entity_index, generation`, int64(tick),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var (
			s               SnapshotRow
			idx, gen, tickN int64
		)
		if err := rows.Scan(&idx, &gen, &tickN, &s.RosterID, &s.Name, &s.Health, &s.Score,
			&s.Position[0], &s.Position[1], &s.Position[2]); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		s.EntityIndex = uint32(idx)
		s.Generation = uint64(gen)
		s.Tick = uint64(tickN)
		out = append(out, s)
	}
	return out, rows.Err()
}
