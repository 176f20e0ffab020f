package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/oceanobs/floatchat/internal/argo"
	"github.com/oceanobs/floatchat/internal/config"
	"github.com/oceanobs/floatchat/internal/gdac"
	"github.com/oceanobs/floatchat/internal/loader"
	"github.com/oceanobs/floatchat/internal/pipeline"
	"github.com/oceanobs/floatchat/internal/profile"
)

const dateLayout = "2006-01-02"

func main() {
	cfg, err := config.LoadIngest()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	app := &cli.App{
		Name:  "ingest",
		Usage: "Fetch, flatten and load ARGO float profiles",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat-min", Value: cfg.Region.LatMin, Usage: "southern bound of the selection box"},
			&cli.Float64Flag{Name: "lat-max", Value: cfg.Region.LatMax, Usage: "northern bound of the selection box"},
			&cli.Float64Flag{Name: "lon-min", Value: cfg.Region.LonMin, Usage: "western bound of the selection box"},
			&cli.Float64Flag{Name: "lon-max", Value: cfg.Region.LonMax, Usage: "eastern bound of the selection box"},
			&cli.StringFlag{Name: "start", Value: cfg.Window.Start.Format(dateLayout), Usage: "first observation date (YYYY-MM-DD, inclusive)"},
			&cli.StringFlag{Name: "end", Value: cfg.Window.End.Format(dateLayout), Usage: "last observation date (YYYY-MM-DD, inclusive)"},
			&cli.StringFlag{Name: "download-dir", Value: cfg.DownloadDir, Usage: "directory for retrieved profile files"},
			&cli.StringFlag{Name: "csv", Value: cfg.CSVPath, Usage: "path of the intermediate CSV artifact"},
			&cli.StringSliceFlag{Name: "var", Value: cli.NewStringSlice(profile.DefaultVars...), Usage: "profile variables to extract"},
			&cli.BoolFlag{Name: "dry-run", Usage: "stop after writing the CSV artifact"},
		},
		Action: func(c *cli.Context) error {
			return runIngest(c, cfg)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}

func runIngest(c *cli.Context, cfg config.IngestConfig) error {
	ctx := c.Context

	start, err := time.ParseInLocation(dateLayout, c.String("start"), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, c.String("end"), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	params := pipeline.Params{
		Region: argo.Region{
			LatMin: c.Float64("lat-min"),
			LatMax: c.Float64("lat-max"),
			LonMin: c.Float64("lon-min"),
			LonMax: c.Float64("lon-max"),
		},
		Window:      argo.TimeWindow{Start: start, End: end},
		DownloadDir: c.String("download-dir"),
		CSVPath:     c.String("csv"),
		Vars:        c.StringSlice("var"),
		DryRun:      c.Bool("dry-run"),
	}

	client := &gdac.Client{Host: cfg.FTPHost, BaseDir: cfg.FTPBaseDir}

	var sink pipeline.Sink
	if !params.DryRun {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		store, err := loader.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close(ctx)
		sink = store
	}

	return pipeline.Run(ctx, client, client, profile.FlattenFile, sink, params)
}
