package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alainx277/ssnt/internal/assets"
	"github.com/Alainx277/ssnt/internal/maps"
	"github.com/Alainx277/ssnt/internal/maps/gen"
	"github.com/Alainx277/ssnt/internal/maps/lifecycle"
	"github.com/Alainx277/ssnt/internal/maps/turfs"
	"github.com/Alainx277/ssnt/internal/persistence/indexdb"
	"github.com/Alainx277/ssnt/internal/persistence/oplog"
	"github.com/Alainx277/ssnt/internal/scene"
	"github.com/Alainx277/ssnt/internal/tuning"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed       = flag.Int64("seed", 0, "override world seed (0 = use tuning)")
		ticks      = flag.Int("ticks", -1, "override tick count (negative = use tuning)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite apply index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[mapsim] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}
	if *ticks >= 0 {
		tune.Ticks = *ticks
	}

	cat, err := turfs.Load(filepath.Join(*configDir, "turfs.json"))
	if err != nil {
		logger.Fatalf("load turf catalog: %v", err)
	}
	lib, err := assets.LoadLibrary(filepath.Join(*configDir, "meshes.json"))
	if err != nil {
		logger.Fatalf("load mesh manifest: %v", err)
	}
	logger.Printf("catalog: %d turfs (digest %.12s), %d meshes", cat.Len(), cat.Digest, lib.Len())

	m, err := maps.New(maps.Vec2i{X: tune.WorldWidthChunks, Y: tune.WorldHeightChunks})
	if err != nil {
		logger.Fatalf("create map: %v", err)
	}
	if err := gen.Generate(m, cat, tune.Seed, tune.WallPermille); err != nil {
		logger.Fatalf("generate map: %v", err)
	}

	graph := scene.NewGraph()
	mgr := lifecycle.NewManager(graph, cat, lib, logger)

	journal, err := oplog.NewApplyLogger(*dataDir)
	if err != nil {
		logger.Fatalf("open apply journal: %v", err)
	}
	defer journal.Close()

	sinks := multiJournal{journal}
	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open apply index: %v", err)
		}
		defer idx.Close()
		sinks = append(sinks, idx)
	}
	mgr.SetJournal(sinks)

	applied, err := mgr.ApplyChanged(m, 0)
	if err != nil {
		logger.Fatalf("initial materialization: %v", err)
	}
	logger.Printf("initial materialization: %d chunks, %d live objects", applied, graph.Len())

	for tick := uint64(1); tick <= uint64(tune.Ticks); tick++ {
		if err := gen.Mutate(m, cat, tune.Seed, tick, tune.MutationsPerTick); err != nil {
			logger.Fatalf("tick %d: mutate: %v", tick, err)
		}
		if tune.UnloadEveryTicks > 0 && tick%uint64(tune.UnloadEveryTicks) == 0 {
			// Evict a seeded-random chunk; the same pass rebuilds it from
			// scratch, exercising the full-materialization path mid-run.
			index := int(gen.Hash2(tune.Seed, int(tick), -1) % uint64(m.ChunkCount()))
			mgr.Unload(index)
			logger.Printf("tick %d: unloaded chunk %d", tick, index)
		}
		if _, err := mgr.ApplyChanged(m, tick); err != nil {
			logger.Fatalf("tick %d: apply: %v", tick, err)
		}
	}

	// A tick with no mutations must be a true no-op against the backend.
	before := graph.Stats()
	if _, err := mgr.ApplyChanged(m, uint64(tune.Ticks)+1); err != nil {
		logger.Fatalf("quiet tick: %v", err)
	}
	if after := graph.Stats(); after != before {
		logger.Fatalf("quiet tick issued backend calls: %+v -> %+v", before, after)
	}

	s := graph.Stats()
	logger.Printf("done: ticks=%d created=%d updated=%d destroyed=%d live=%d journal=%s",
		tune.Ticks, s.Created, s.Updated, s.Destroyed, s.Live, journal.Path())
}

// multiJournal fans one apply entry out to every sink.
type multiJournal []lifecycle.Journal

func (mj multiJournal) WriteApply(e lifecycle.ApplyLogEntry) error {
	for _, j := range mj {
		if err := j.WriteApply(e); err != nil {
			return err
		}
	}
	return nil
}
