// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/database"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/timeline"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func visit(area int64, name, person string, enterMin, stayMin int) models.PresenceRecord {
	enter := base.Add(time.Duration(enterMin) * time.Minute)
	return models.PresenceRecord{
		AreaID:    area,
		AreaName:  name,
		PersonID:  person,
		EnterTime: enter,
		ExitTime:  enter.Add(time.Duration(stayMin) * time.Minute),
	}
}

func sampleRecords() []models.PresenceRecord {
	return []models.PresenceRecord{
		visit(1, "Entrance", "a", 0, 2),
		visit(1, "Entrance", "b", 10, 3),
		visit(2, "Produce", "a", 15, 20),
		visit(1, "Entrance", "c", 65, 1),
		visit(3, "Checkout", "b", 70, 8),
	}
}

func writeRecords(t *testing.T, records []models.PresenceRecord) string {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write records: %v", err)
	}
	return path
}

// run parses args and runs the selected command with stdin as input.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := CLI{Globals: Globals{stdin: strings.NewReader(stdin), stdout: &out}}
	parser, err := newParser(&cli, kong.Writers(&out, &out), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("newParser: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	err = ctx.Run(&cli.Globals)
	return out.String(), err
}

func TestBucketCmd(t *testing.T) {
	path := writeRecords(t, sampleRecords())

	out, err := run(t, "", "bucket", "--records", path, "--interval", "60")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	var resp models.TimelineResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(resp.Buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(resp.Buckets))
	}
	if resp.Summary.RecordCount != 5 || resp.Summary.IntervalMinutes != 60 {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestBucketCmd_Stdin(t *testing.T) {
	data, err := json.Marshal(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	out, err := run(t, string(data), "bucket", "--interval", "30", "--compact")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Errorf("compact output spans lines:\n%s", out)
	}
}

func TestBucketCmd_RangeTooLarge(t *testing.T) {
	records := append(sampleRecords(), visit(1, "Entrance", "z", 60*24*3, 5))
	path := writeRecords(t, records)

	_, err := run(t, "", "bucket", "--records", path, "--interval", "1", "--max-slots", "100")
	if !errors.Is(err, timeline.ErrRangeTooLarge) {
		t.Fatalf("err = %v, want ErrRangeTooLarge", err)
	}
	if !strings.Contains(err.Error(), "try --interval") {
		t.Errorf("error does not suggest an interval: %v", err)
	}
}

func TestRankCmd(t *testing.T) {
	path := writeRecords(t, sampleRecords())

	out, err := run(t, "", "rank", "--records", path, "--metric", "totalDurationMinutes")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	for i, want := range []string{"Produce", "Checkout", "Entrance"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want %s", i+1, lines[i], want)
		}
	}

	htmlPath := filepath.Join(t.TempDir(), "ranking.html")
	out, err = run(t, "", "rank", "--records", path, "--top", "1", "--json", "--html", htmlPath)
	if err != nil {
		t.Fatalf("rank --json: %v", err)
	}
	var ranking models.Ranking
	if err := json.Unmarshal([]byte(out), &ranking); err != nil {
		t.Fatalf("decode ranking: %v", err)
	}
	if len(ranking.Entries) != 1 || ranking.Entries[0].AreaName != "Entrance" {
		t.Errorf("ranking = %+v", ranking.Entries)
	}
	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read ranking chart: %v", err)
	}
	if !bytes.Contains(html, []byte("Busiest areas")) {
		t.Error("ranking chart missing title")
	}
}

func TestChartCmd(t *testing.T) {
	path := writeRecords(t, sampleRecords())
	outFile := filepath.Join(t.TempDir(), "timeline.html")

	if _, err := run(t, "", "chart", "--records", path, "--out", outFile, "--title", "Store 12"); err != nil {
		t.Fatalf("chart: %v", err)
	}
	html, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	for _, want := range []string{"Store 12", "Busiest areas", "Entrance"} {
		if !bytes.Contains(html, []byte(want)) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestImportCmd(t *testing.T) {
	path := writeRecords(t, sampleRecords())
	dbPath := filepath.Join(t.TempDir(), "presence.duckdb")

	out, err := run(t, "", "import", "--records", path, "--duckdb", dbPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 5 records") {
		t.Errorf("output = %q", out)
	}

	db, err := database.New(&config.DatabaseConfig{Driver: config.DriverDuckDB, Path: dbPath})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	areas, err := db.ListAreas(ctx)
	if err != nil {
		t.Fatalf("ListAreas: %v", err)
	}
	if len(areas) != 3 || areas[1].Name != "Produce" {
		t.Errorf("areas = %+v", areas)
	}

	records, err := db.FetchRecords(ctx, models.PresenceQuery{
		AreaIDs:            []int64{1, 2, 3},
		Start:              base,
		End:                base.Add(2 * time.Hour),
		MaxDurationSeconds: 999999,
	})
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("records = %d, want 5", len(records))
	}
}

func TestAreasOf(t *testing.T) {
	records := []models.PresenceRecord{
		visit(3, "Checkout", "a", 0, 1),
		visit(1, "Door", "b", 0, 1),
		visit(1, "Entrance", "c", 0, 1),
	}
	areas := areasOf(records)
	if len(areas) != 2 || areas[0].ID != 1 || areas[0].Name != "Entrance" || areas[1].ID != 3 {
		t.Errorf("areasOf = %+v", areas)
	}
}
