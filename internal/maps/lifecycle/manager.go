// Package lifecycle owns the working set of materialized chunks: which
// chunks currently have realized state, the container object each one
// hangs under, and when reconciliation runs for them.
package lifecycle

import (
	"errors"
	"log"

	"github.com/Alainx277/ssnt/internal/assets"
	"github.com/Alainx277/ssnt/internal/maps"
	"github.com/Alainx277/ssnt/internal/maps/materialize"
	"github.com/Alainx277/ssnt/internal/maps/turfs"
	"github.com/Alainx277/ssnt/internal/scene"
)

// ApplyLogEntry records one reconciliation pass for the journal.
type ApplyLogEntry struct {
	Tick       uint64 `json:"tick"`
	Chunk      int    `json:"chunk"`
	Full       bool   `json:"full"`
	Marked     int    `json:"marked"`
	LiveBefore int    `json:"live_before"`
	LiveAfter  int    `json:"live_after"`
}

type Journal interface {
	WriteApply(ApplyLogEntry) error
}

// Manager retains one MaterializedChunk per materialized chunk index and
// drives reconciliation against a backend. All realized turfs of a chunk
// are parented under a per-chunk container object, which in turn hangs
// under one map root object.
type Manager struct {
	backend scene.Backend
	cat     *turfs.Catalog
	lib     *assets.Library
	logger  *log.Logger
	journal Journal

	root       scene.Handle
	containers map[int]scene.Handle
	spawned    map[int]*materialize.MaterializedChunk
}

func NewManager(b scene.Backend, cat *turfs.Catalog, lib *assets.Library, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		backend:    b,
		cat:        cat,
		lib:        lib,
		logger:     logger,
		root:       b.CreateObject(scene.MeshRef{}, scene.MaterialRef{}, scene.Vec3{}, scene.Handle{}),
		containers: map[int]scene.Handle{},
		spawned:    map[int]*materialize.MaterializedChunk{},
	}
}

// SetJournal attaches an optional apply journal.
func (mgr *Manager) SetJournal(j Journal) {
	mgr.journal = j
}

func (mgr *Manager) Root() scene.Handle {
	return mgr.root
}

// Spawned reports the retained materialized state for a chunk index.
func (mgr *Manager) Spawned(index int) (*materialize.MaterializedChunk, bool) {
	mc, ok := mgr.spawned[index]
	return mc, ok
}

func (mgr *Manager) SpawnedCount() int {
	return len(mgr.spawned)
}

// ApplyIndex reconciles one chunk and consumes its change markers. The
// manager owns marker clearing: they are reset only after a successful
// pass, so a failed pass leaves them set for the next attempt.
func (mgr *Manager) ApplyIndex(m *maps.MapData, index int, tick uint64) error {
	chunk, err := m.Chunk(index)
	if err != nil {
		return err
	}

	container, ok := mgr.containers[index]
	if !ok {
		container = mgr.backend.CreateObject(scene.MeshRef{}, scene.MaterialRef{}, scene.Vec3{}, mgr.root)
		mgr.containers[index] = container
	}

	prior := mgr.spawned[index]
	full := prior == nil
	liveBefore := 0
	if prior != nil {
		liveBefore = prior.Live()
	}
	marked := 0
	for _, c := range chunk.Changed {
		if c {
			marked++
		}
	}

	mc, err := materialize.Reconcile(mgr.backend, m, mgr.cat, mgr.lib, prior, index, container, mgr.logger)
	if err != nil {
		return err
	}
	mgr.spawned[index] = mc
	chunk.ClearChanged()

	if mgr.journal != nil {
		entry := ApplyLogEntry{
			Tick:       tick,
			Chunk:      index,
			Full:       full,
			Marked:     marked,
			LiveBefore: liveBefore,
			LiveAfter:  mc.Live(),
		}
		if err := mgr.journal.WriteApply(entry); err != nil {
			mgr.logger.Printf("apply journal: %v", err)
		}
	}
	return nil
}

// ApplyChanged walks loaded chunks in ascending index order and reconciles
// every chunk that was never materialized or has pending change markers.
// It reports how many chunks were applied.
func (mgr *Manager) ApplyChanged(m *maps.MapData, tick uint64) (int, error) {
	applied := 0
	for index := 0; index < m.ChunkCount(); index++ {
		chunk, err := m.Chunk(index)
		if err != nil {
			if errors.Is(err, maps.ErrChunkNotLoaded) {
				continue
			}
			return applied, err
		}
		if _, seen := mgr.spawned[index]; seen && !chunk.HasChanges() {
			continue
		}
		if err := mgr.ApplyIndex(m, index, tick); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Unload tears down the chunk's realized state and forgets it. The next
// ApplyIndex for the index is a full materialization again.
func (mgr *Manager) Unload(index int) {
	if mc, ok := mgr.spawned[index]; ok {
		materialize.Teardown(mgr.backend, mc)
		delete(mgr.spawned, index)
	}
	if container, ok := mgr.containers[index]; ok {
		mgr.backend.DestroyObjectRecursive(container)
		delete(mgr.containers, index)
	}
}

// Close unloads every retained chunk and destroys the map root.
func (mgr *Manager) Close() {
	for index := range mgr.containers {
		mgr.Unload(index)
	}
	mgr.backend.DestroyObjectRecursive(mgr.root)
	mgr.root = scene.Handle{}
}
