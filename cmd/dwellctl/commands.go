// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/database"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/report"
	"github.com/tomtom215/dwellmap/internal/timeline"
)

// RecordsInput is the shared --records flag.
type RecordsInput struct {
	Records string `help:"JSON array of presence records, or - for stdin." default:"-"`
}

func (in RecordsInput) load(g *Globals) ([]models.PresenceRecord, error) {
	var r io.Reader = g.stdin
	if in.Records != "-" {
		f, err := os.Open(in.Records)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		r = f
	}

	var records []models.PresenceRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	logging.Debug().Int("records", len(records)).Str("source", in.Records).Msg("Loaded presence records")
	return records, nil
}

// BucketFlags control timeline construction.
type BucketFlags struct {
	Interval int  `help:"Bucket width in minutes." default:"60"`
	MaxSlots int  `help:"Maximum number of buckets the range may need." default:"500"`
	FillGaps bool `help:"Emit empty buckets between populated ones."`
}

func (f BucketFlags) build(records []models.PresenceRecord) (*models.TimelineResponse, error) {
	engine := timeline.NewEngine(timeline.Options{MaxSlots: f.MaxSlots, FillGaps: f.FillGaps})
	buckets, err := engine.Bucket(records, f.Interval)
	if err != nil {
		var tooLarge *timeline.RangeTooLargeError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w (try --interval %d)", err, tooLarge.SuggestedIntervalMinutes)
		}
		return nil, err
	}
	return &models.TimelineResponse{
		Buckets: buckets,
		Summary: timeline.Summarize(records, buckets, f.Interval),
	}, nil
}

// BucketCmd prints the bucketed timeline.
type BucketCmd struct {
	RecordsInput `embed:""`
	BucketFlags  `embed:""`

	Compact bool `help:"Print compact JSON."`
}

func (c *BucketCmd) Run(g *Globals) error {
	records, err := c.load(g)
	if err != nil {
		return err
	}
	resp, err := c.build(records)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, resp, !c.Compact)
}

// RankCmd prints the overall area ranking.
type RankCmd struct {
	RecordsInput `embed:""`
	BucketFlags  `embed:""`

	Metric string `help:"Ranking metric." default:"visitCount" enum:"visitCount,totalDurationMinutes,avgDurationMinutes"`
	Top    int    `help:"Number of areas to list." default:"10"`
	JSON   bool   `name:"json" help:"Print the ranking as JSON."`
	HTML   string `name:"html" help:"Also write the ranking as an HTML bar chart to this file."`
}

func (c *RankCmd) Run(g *Globals) error {
	metric, err := models.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	records, err := c.load(g)
	if err != nil {
		return err
	}
	resp, err := c.build(records)
	if err != nil {
		return err
	}

	ranking := report.OverallRanking(resp.Buckets, metric, c.Top)
	if c.HTML != "" {
		if err := writeRankingHTML(c.HTML, ranking, metric); err != nil {
			return err
		}
	}
	if c.JSON {
		return writeJSON(g.stdout, ranking, true)
	}
	for i, e := range ranking.Entries {
		if _, err := fmt.Fprintf(g.stdout, "%2d. %-24s %10.2f %6.1f%%\n", i+1, e.AreaName, e.Value, e.BarPercent); err != nil {
			return err
		}
	}
	return nil
}

func writeRankingHTML(path string, ranking models.Ranking, metric models.Metric) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ranking file: %w", err)
	}
	if err := report.WriteRanking(f, ranking, report.Options{Title: "Busiest areas", Metric: metric}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ChartCmd writes the timeline chart page.
type ChartCmd struct {
	RecordsInput `embed:""`
	BucketFlags  `embed:""`

	Out        string `help:"Output HTML file, or - for stdout." default:"-"`
	Title      string `help:"Page title." default:"Presence timeline"`
	Metric     string `help:"Stacked bar metric." default:"visitCount" enum:"visitCount,totalDurationMinutes,avgDurationMinutes"`
	TopAreas   int    `help:"Number of areas shown as separate series." default:"10"`
	AssetsHost string `help:"Serve echarts assets from this host instead of the CDN."`
}

func (c *ChartCmd) Run(g *Globals) error {
	metric, err := models.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	records, err := c.load(g)
	if err != nil {
		return err
	}
	resp, err := c.build(records)
	if err != nil {
		return err
	}

	w := g.stdout
	if c.Out != "-" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create chart file: %w", err)
		}
		defer f.Close()
		w = f
	}

	opts := report.Options{Title: c.Title, Metric: metric, TopAreas: c.TopAreas, AssetsHost: c.AssetsHost}
	if err := report.WriteTimeline(w, resp, opts); err != nil {
		return err
	}
	logging.Info().Str("out", c.Out).Int("buckets", len(resp.Buckets)).Msg("Timeline chart written")
	return nil
}

// ImportCmd loads records and their areas into DuckDB.
type ImportCmd struct {
	RecordsInput `embed:""`

	DuckDB    string `name:"duckdb" help:"DuckDB file to write." required:""`
	MaxMemory string `help:"DuckDB memory limit." default:"1GB"`
}

func (c *ImportCmd) Run(g *Globals) error {
	records, err := c.load(g)
	if err != nil {
		return err
	}

	db, err := database.New(&config.DatabaseConfig{Driver: config.DriverDuckDB, Path: c.DuckDB, MaxMemory: c.MaxMemory})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.UpsertAreas(ctx, areasOf(records)); err != nil {
		return fmt.Errorf("upsert areas: %w", err)
	}
	if err := db.InsertRecords(ctx, records); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}
	if err := db.Checkpoint(ctx); err != nil {
		return err
	}

	_, err = fmt.Fprintf(g.stdout, "imported %d records\n", len(records))
	return err
}

// areasOf returns the distinct areas named by records, ordered by id. The
// last name seen for an id wins.
func areasOf(records []models.PresenceRecord) []models.Area {
	byID := make(map[int64]models.Area)
	for _, r := range records {
		byID[r.AreaID] = models.Area{ID: r.AreaID, Name: r.AreaName, Number: r.AreaNumber}
	}
	areas := make([]models.Area, 0, len(byID))
	for _, a := range byID {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
	return areas
}

func writeJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
