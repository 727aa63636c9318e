package turfs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Def describes one turf kind. Mesh names an entry in the mesh library;
// an empty mesh (or one missing from the library) leaves the turf
// unrealizable until the asset shows up.
type Def struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Mesh  string `json:"mesh,omitempty"`
	Solid bool   `json:"solid"`
}

// Catalog is the loaded turf palette. Palette indices are stable for a
// given file: ids are sorted before assignment.
type Catalog struct {
	Palette []string
	Index   map[string]uint16
	Defs    []Def
	Digest  string
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var defs []Def
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("turfs.json: %w", err)
	}
	byID := make(map[string]Def, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("turfs.json: empty id")
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("turfs.json: duplicate id %q", d.ID)
		}
		byID[d.ID] = d
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c := &Catalog{
		Palette: ids,
		Index:   make(map[string]uint16, len(ids)),
		Defs:    make([]Def, len(ids)),
	}
	for i, id := range ids {
		c.Index[id] = uint16(i)
		c.Defs[i] = byID[id]
	}
	sum := sha256.Sum256(raw)
	c.Digest = hex.EncodeToString(sum[:])
	return c, nil
}

// Definition resolves a palette index to its turf definition.
func (c *Catalog) Definition(id uint16) (Def, bool) {
	if int(id) >= len(c.Defs) {
		return Def{}, false
	}
	return c.Defs[id], true
}

// Lookup resolves a turf id string to its palette index.
func (c *Catalog) Lookup(id string) (uint16, bool) {
	i, ok := c.Index[id]
	return i, ok
}

func (c *Catalog) Len() int {
	return len(c.Defs)
}
