package assets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Alainx277/ssnt/internal/scene"
)

// Library tracks which meshes are loadable. Turf definitions reference
// meshes by id; an id absent from the library means the asset is not
// available yet and anything needing it has to wait for a later pass.
type Library struct {
	meshes map[string]scene.MeshRef
}

type manifestEntry struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

func NewLibrary() *Library {
	return &Library{meshes: map[string]scene.MeshRef{}}
}

// LoadLibrary reads a mesh manifest listing every mesh the asset pipeline
// managed to load.
func LoadLibrary(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []manifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("meshes.json: %w", err)
	}
	l := NewLibrary()
	for _, e := range entries {
		if e.ID == "" || e.Path == "" {
			return nil, fmt.Errorf("meshes.json: entry with empty id or path")
		}
		if _, dup := l.meshes[e.ID]; dup {
			return nil, fmt.Errorf("meshes.json: duplicate mesh id %q", e.ID)
		}
		l.meshes[e.ID] = scene.MeshRef{Source: e.Path}
	}
	return l, nil
}

// Mesh resolves a mesh id. ok is false when the asset is unavailable,
// including the empty id.
func (l *Library) Mesh(id string) (scene.MeshRef, bool) {
	if id == "" {
		return scene.MeshRef{}, false
	}
	m, ok := l.meshes[id]
	return m, ok
}

// Register makes a mesh available after load. Used by tests and by late
// asset arrival.
func (l *Library) Register(id, path string) {
	l.meshes[id] = scene.MeshRef{Source: path}
}

// Drop removes a mesh, simulating a failed or unloaded asset.
func (l *Library) Drop(id string) {
	delete(l.meshes, id)
}

func (l *Library) Len() int {
	return len(l.meshes)
}
