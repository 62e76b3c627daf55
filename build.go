package seapack

import (
	"errors"
	"log"
)

var ErrNoData = errors.New("No data ingested")

// BuildConfig carries one build invocation. Source paths left empty are
// skipped; at least one source must survive ingestion for a pack to be
// written.
type BuildConfig struct {
	Region         string
	Cycle          string
	Grid           Grid
	WindPath       string
	WavePath       string
	CurrentPath    string
	CoastlinePath  string
	DepthThreshold float64
	Dilations      int
	SigningKey     string // "env:NAME" or a seed file path
	KeyId          string
	OutDir         string
	Level          int
}

// BuildPack runs the full assembly pipeline: signing key load, per-source
// ingestion and regridding, mask generation with coastal dilation, then the
// compressed, signed pack. Ingestion failures are logged and the source is
// skipped; every other failure aborts.
func BuildPack(cfg *BuildConfig) (*Manifest, error) {
	log.Printf("Building pack for region %s, cycle %s", cfg.Region, cfg.Cycle)
	log.Printf("Target grid %s (%dx%d)", cfg.Grid.Spec(), cfg.Grid.Rows(), cfg.Grid.Cols())

	key, err := LoadSigningKey(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	defer ZeroizeSeed(key)
	log.Println("Loaded Ed25519 signing key")

	sources := []struct {
		kind SourceKind
		path string
	}{
		{kind: SourceWind, path: cfg.WindPath},
		{kind: SourceWave, path: cfg.WavePath},
		{kind: SourceCurrent, path: cfg.CurrentPath},
	}

	fields := make([]Field, 0, 8)
	for _, src := range sources {
		if src.path == "" {
			continue
		}
		log.Printf("Ingesting %s data from %s", src.kind, src.path)
		ingested, err := IngestSource(src.path, src.kind, cfg.Grid)
		if err != nil {
			log.Printf("❌ Skipping %s source: %v", src.kind, err)
			continue
		}
		for _, f := range ingested {
			log.Printf("Prepared %s: %d cells", f.Name, len(f.Values))
		}
		fields = append(fields, ingested...)
	}

	if len(fields) == 0 {
		log.Println("No data ingested")
		return nil, ErrNoData
	}

	var coastline []Polygon
	if cfg.CoastlinePath != "" {
		log.Printf("Rasterising coastline from %s", cfg.CoastlinePath)
		coastline, err = ReadShapefilePolygons(cfg.CoastlinePath)
		if err != nil {
			return nil, err
		}
		log.Printf("Read %d coastline polygons", len(coastline))
	}

	dilations := cfg.Dilations
	if dilations < 0 {
		dilations = 0
	}
	log.Printf("Generating safety masks (depth threshold %.1fm, %d dilation pass(es))", cfg.DepthThreshold, dilations)
	masks := BuildMasks(cfg.Grid, cfg.DepthThreshold, coastline, dilations)

	manifest, err := WritePack(&PackSpec{
		Region:   cfg.Region,
		CycleIso: cfg.Cycle,
		Grid:     cfg.Grid,
		Fields:   fields,
		Masks:    masks,
		Key:      key,
		KeyId:    cfg.KeyId,
		Level:    cfg.Level,
	}, cfg.OutDir)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Pack complete: %s", cfg.OutDir)

	return manifest, nil
}
