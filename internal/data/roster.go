package data

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// RosterEntry is one character entering the arena.
type RosterEntry struct {
	ID        int32      `yaml:"id"`
	Name      string     `yaml:"name"`
	Health    int        `yaml:"health"`
	Position  [3]float32 `yaml:"position"`
	FaceAngle float32    `yaml:"face_angle"` // degrees
}

type rosterFile struct {
	Characters []RosterEntry `yaml:"characters"`
}

// Roster is the list of characters for a round.
type Roster struct {
	entries []RosterEntry
}

const defaultHealth = 10

// LoadRoster loads the character roster. Names are trimmed and title-cased
// so scoreboard output is uniform.
func LoadRoster(path string) (*Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	title := cases.Title(language.Und)
	seen := make(map[int32]bool, len(f.Characters))
	for i := range f.Characters {
		e := &f.Characters[i]
		if seen[e.ID] {
			return nil, fmt.Errorf("parse roster: duplicate id %d", e.ID)
		}
		seen[e.ID] = true
		e.Name = title.String(strings.TrimSpace(e.Name))
		if e.Name == "" {
			return nil, fmt.Errorf("parse roster: character %d has no name", e.ID)
		}
		if e.Health <= 0 {
			e.Health = defaultHealth
		}
	}
	return &Roster{entries: f.Characters}, nil
}

// All returns every entry in file order.
func (r *Roster) All() []RosterEntry {
	return r.entries
}

// Count returns the number of characters.
func (r *Roster) Count() int {
	return len(r.entries)
}
