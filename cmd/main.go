package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	seapack "github.com/seasight/go-seapack"
)

func build_pack(cCtx *cli.Context) error {
	grid, err := seapack.ParseGridSpec(cCtx.String("grid"))
	if err != nil {
		return err
	}

	_, err = seapack.BuildPack(&seapack.BuildConfig{
		Region:         cCtx.String("region"),
		Cycle:          cCtx.String("cycle"),
		Grid:           grid,
		WindPath:       cCtx.String("wind"),
		WavePath:       cCtx.String("wave"),
		CurrentPath:    cCtx.String("current"),
		CoastlinePath:  cCtx.String("coastline"),
		DepthThreshold: cCtx.Float64("depth_threshold"),
		Dilations:      cCtx.Int("dilate"),
		SigningKey:     cCtx.String("signing_key"),
		KeyId:          cCtx.String("key_id"),
		OutDir:         cCtx.String("out"),
		Level:          cCtx.Int("level"),
	})

	return err
}

func verify_pack(cCtx *cli.Context) error {
	pack_dir := cCtx.Args().First()
	if pack_dir == "" {
		return errors.New("pack directory argument required")
	}

	var public_key []byte
	if pk := cCtx.String("public-key"); pk != "" {
		key, err := seapack.ParsePublicKey(pk)
		if err != nil {
			return err
		}
		public_key = key
	}

	result, err := seapack.VerifyPack(pack_dir, public_key)
	if err != nil {
		return err
	}

	status := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	}
	log.Println("Verification summary:")
	log.Printf("  Signature: %s", status(result.SignatureOK))
	log.Printf("  Parts:     %s", status(result.PartsOK))
	log.Printf("  Masks:     %s", status(result.MasksOK))

	if !result.Pass() {
		log.Println("❌ PACK INVALID")
		return errors.Join(result.Problems...)
	}
	log.Println("✅ PACK VALID")

	return nil
}

func generate_key(cCtx *cli.Context) error {
	seed_b64, public_b64, err := seapack.GenerateSigningSeed()
	if err != nil {
		return err
	}

	fmt.Println("Generated Ed25519 signing key:")
	fmt.Printf("ED25519_PRIV=%s\n", seed_b64)
	fmt.Printf("PUBLIC_KEY=%s\n", public_b64)
	fmt.Println()
	fmt.Printf("export ED25519_PRIV='%s'\n", seed_b64)

	return nil
}

func rasterize_landmask(cCtx *cli.Context) error {
	grid, err := seapack.ParseGridSpec(cCtx.String("grid"))
	if err != nil {
		return err
	}

	log.Printf("Reading coastline polygons from %s", cCtx.String("shapefile"))
	polys, err := seapack.ReadShapefilePolygons(cCtx.String("shapefile"))
	if err != nil {
		return err
	}
	log.Printf("Rasterising %d polygons onto %dx%d cells", len(polys), grid.Rows(), grid.Cols())

	mask := seapack.RasterizeMask(polys, grid)

	sidecar := seapack.NewMaskSidecar(grid, mask)
	err = seapack.WriteMaskSidecar(cCtx.String("out"), &sidecar)
	if err != nil {
		return err
	}
	log.Printf("Wrote mask with %dx%d cells to %s", sidecar.Rows, sidecar.Cols, cCtx.String("out"))

	return nil
}

func generate_test_data(cCtx *cli.Context) error {
	grid, err := seapack.ParseGridSpec(cCtx.String("grid"))
	if err != nil {
		return err
	}

	out_dir := cCtx.String("out")
	err = os.MkdirAll(out_dir, 0o755)
	if err != nil {
		return err
	}

	cycle := time.Now().UTC().Truncate(time.Hour)
	paths, err := seapack.WriteSyntheticSources(out_dir, grid, cycle)
	if err != nil {
		return err
	}

	for _, path := range paths {
		log.Printf("Wrote %s", path)
	}
	log.Printf("Cycle time: %s", cycle.Format("2006-01-02T15:04:05Z"))

	return nil
}

func export_tiledb(cCtx *cli.Context) error {
	log.Printf("Exporting pack %s to TileDB array %s", cCtx.String("pack"), cCtx.String("array-uri"))
	err := seapack.ExportPackToTileDB(cCtx.String("pack"), cCtx.String("array-uri"), cCtx.String("config-uri"))
	if err != nil {
		return err
	}
	log.Println("Export complete")

	return nil
}

func main() {
	app := &cli.App{
		Name:  "seapack",
		Usage: "Build and verify signed marine forecast packs.",
		Commands: []*cli.Command{
			&cli.Command{
				Name:  "build",
				Usage: "Assemble a compressed, signed pack from gridded source data.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "region",
						Usage:    "Region name, e.g. NATL_050.",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "cycle",
						Usage:    "Cycle time as an ISO 8601 UTC instant, e.g. 2025-09-15T12:00:00Z.",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "grid",
						Usage:    "Grid definition lat0/lat1/lon0/lon1/d.",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "wind",
						Usage: "Path to the wind (GFS) gridded source file.",
					},
					&cli.StringFlag{
						Name:  "wave",
						Usage: "Path to the wave (WW3) gridded source file.",
					},
					&cli.StringFlag{
						Name:  "current",
						Usage: "Path to the current (HYCOM) gridded source file.",
					},
					&cli.StringFlag{
						Name:  "coastline",
						Usage: "Path to a coastline polygon shapefile for the land mask.",
					},
					&cli.Float64Flag{
						Name:  "depth_threshold",
						Usage: "Shallow water depth threshold in metres.",
						Value: 20.0,
					},
					&cli.IntFlag{
						Name:  "dilate",
						Usage: "Coastal dilation passes applied to each mask.",
						Value: 1,
					},
					&cli.StringFlag{
						Name:     "signing_key",
						Usage:    "Ed25519 signing key; env:NAME or a seed file path.",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "key_id",
						Usage: "Key identifier recorded in the manifest.",
					},
					&cli.IntFlag{
						Name:  "level",
						Usage: "Zstandard compression level.",
						Value: seapack.DefaultCompressionLevel,
					},
					&cli.StringFlag{
						Name:     "out",
						Usage:    "Output directory for the pack.",
						Required: true,
					},
				},
				Action: build_pack,
			},
			&cli.Command{
				Name:      "verify",
				Usage:     "Verify a pack directory; signature, part hashes and masks.",
				ArgsUsage: "<pack-dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "public-key",
						Usage: "Base64 encoded Ed25519 public key. Without it only the signature format is checked.",
					},
				},
				Action: verify_pack,
			},
			&cli.Command{
				Name:   "keygen",
				Usage:  "Generate an Ed25519 signing key and print the base64 seed.",
				Action: generate_key,
			},
			&cli.Command{
				Name:  "rasterize-landmask",
				Usage: "Rasterise a coastline shapefile into a land mask sidecar file.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "shapefile",
						Usage:    "Path to the coastline polygon shapefile.",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "grid",
						Usage:    "Grid definition lat0/lat1/lon0/lon1/d.",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Usage:    "Output path for the mask sidecar.",
						Required: true,
					},
				},
				Action: rasterize_landmask,
			},
			&cli.Command{
				Name:  "gen-test-data",
				Usage: "Write synthetic wind/wave/current source files for testing.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "grid",
						Usage: "Grid definition lat0/lat1/lon0/lon1/d.",
						Value: "30/60/-80/-10/0.5",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory for the source files.",
						Value: "test_data",
					},
				},
				Action: generate_test_data,
			},
			&cli.Command{
				Name:  "export-tiledb",
				Usage: "Export a pack into a dense TileDB array for analysis.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "pack",
						Usage:    "Path to the pack directory.",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "array-uri",
						Usage:    "URI or pathname for the TileDB array.",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "config-uri",
						Usage: "URI or pathname to a TileDB config file.",
					},
				},
				Action: export_tiledb,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
