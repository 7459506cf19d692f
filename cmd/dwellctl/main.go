// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Command dwellctl buckets, ranks and charts presence record exports
// offline, and loads them into a DuckDB file the server can read.
//
//	dwellctl bucket --records visits.json --interval 30
//	dwellctl rank   --records visits.json --metric totalDurationMinutes --top 5
//	dwellctl chart  --records visits.json --out timeline.html
//	dwellctl import --records visits.json --duckdb /data/dwellmap.duckdb
//
// --records - reads the JSON array from stdin.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tomtom215/dwellmap/internal/logging"
)

// Globals are shared by every command.
type Globals struct {
	LogLevel string `help:"Log level." default:"warn" enum:"trace,debug,info,warn,error"`

	stdin  io.Reader `kong:"-"`
	stdout io.Writer `kong:"-"`
}

// CLI is the dwellctl command tree.
type CLI struct {
	Globals `embed:""`

	Bucket BucketCmd `cmd:"" help:"Bucket records into a timeline and print it as JSON."`
	Rank   RankCmd   `cmd:"" help:"Rank areas over the whole timeline."`
	Chart  ChartCmd  `cmd:"" help:"Render the timeline as an HTML chart page."`
	Import ImportCmd `cmd:"" help:"Load records into a DuckDB presence store."`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("dwellctl"),
		kong.Description("Offline tools for floorplan presence timelines."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	cli := CLI{Globals: Globals{stdin: os.Stdin, stdout: os.Stdout}}
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logging.Init(logging.Config{Level: cli.LogLevel, Format: "console", Output: os.Stderr})

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
