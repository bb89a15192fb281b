package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PropTemplate describes one piece of shakeable scenery placed in the arena.
type PropTemplate struct {
	ID         int32      `yaml:"id"`
	Name       string     `yaml:"name"`
	ShakeScale float32    `yaml:"shake_scale"`
	Axis       [3]float32 `yaml:"axis"`
	Position   [3]float32 `yaml:"position"`
}

type propListFile struct {
	Props []PropTemplate `yaml:"props"`
}

// PropTable holds prop templates in file order, indexed by ID.
type PropTable struct {
	props []PropTemplate
	byID  map[int32]int
}

// LoadPropTable loads prop placements from a YAML file.
func LoadPropTable(path string) (*PropTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read props: %w", err)
	}
	var f propListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse props: %w", err)
	}
	t := &PropTable{
		props: f.Props,
		byID:  make(map[int32]int, len(f.Props)),
	}
	for i, p := range f.Props {
		if _, dup := t.byID[p.ID]; dup {
			return nil, fmt.Errorf("parse props: duplicate id %d", p.ID)
		}
		if p.Axis == ([3]float32{}) {
			t.props[i].Axis = [3]float32{0, 1, 0}
		}
		t.byID[p.ID] = i
	}
	return t, nil
}

// Get returns the template with the given ID, or nil.
func (t *PropTable) Get(id int32) *PropTemplate {
	i, ok := t.byID[id]
	if !ok {
		return nil
	}
	return &t.props[i]
}

// All returns every template in file order.
func (t *PropTable) All() []PropTemplate {
	return t.props
}

// Count returns the number of templates.
func (t *PropTable) Count() int {
	return len(t.props)
}
