// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package report renders bucketed timelines and rankings as standalone HTML
// charts using go-echarts. The server exposes them under
// POST /api/v1/timeline/chart and dwellctl writes them to disk.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/normalize"
	"github.com/tomtom215/dwellmap/internal/timeline"
)

// DefaultTopAreas caps the number of stacked series in the timeline chart.
const DefaultTopAreas = 10

// Options controls chart rendering.
type Options struct {
	Title  string
	Metric models.Metric
	// TopAreas limits the stacked series to the busiest areas over the
	// whole timeline. Default: DefaultTopAreas
	TopAreas int
	// AssetsHost overrides the echarts CDN, for offline deployments.
	AssetsHost string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Presence timeline"
	}
	if o.Metric == "" {
		o.Metric = models.MetricVisitCount
	}
	if o.TopAreas <= 0 {
		o.TopAreas = DefaultTopAreas
	}
	return o
}

func (o Options) initOpts(height string) opts.Initialization {
	ini := opts.Initialization{PageTitle: o.Title, Width: "100%", Height: height}
	if o.AssetsHost != "" {
		ini.AssetsHost = o.AssetsHost
	}
	return ini
}

// TimelineBar builds a stacked bar chart of the metric per area and bucket.
// Areas are grouped by name, matching the ranking.
func TimelineBar(resp *models.TimelineResponse, o Options) *charts.Bar {
	o = o.withDefaults()

	labels := make([]string, len(resp.Buckets))
	byName := make([]map[string]*models.RegionAggregate, len(resp.Buckets))
	for i := range resp.Buckets {
		b := &resp.Buckets[i]
		labels[i] = timeline.Label(b.StartTime, resp.Summary.IntervalMinutes)
		byName[i] = groupByName(b)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.initOpts("560px")),
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: fmt.Sprintf("%s, %d buckets of %d min", o.Metric, len(resp.Buckets), resp.Summary.IntervalMinutes),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	bar.SetXAxis(labels)

	for _, name := range topAreaNames(resp.Buckets, o.Metric, o.TopAreas) {
		data := make([]opts.BarData, len(byName))
		for i, group := range byName {
			v := 0.0
			if agg, ok := group[name]; ok {
				v = o.Metric.Value(agg)
			}
			data[i] = opts.BarData{Value: round2(v)}
		}
		bar.AddSeries(name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "areas"}))
	}
	return bar
}

// VisitsLine builds a line of total visits per bucket.
func VisitsLine(resp *models.TimelineResponse, o Options) *charts.Line {
	o = o.withDefaults()

	labels := make([]string, len(resp.Buckets))
	data := make([]opts.LineData, len(resp.Buckets))
	for i := range resp.Buckets {
		b := &resp.Buckets[i]
		labels[i] = timeline.Label(b.StartTime, resp.Summary.IntervalMinutes)
		data[i] = opts.LineData{Value: b.VisitTotal()}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initOpts("320px")),
		charts.WithTitleOpts(opts.Title{
			Title:    "Visits per bucket",
			Subtitle: fmt.Sprintf("%d records, p50 dwell %.1f min", resp.Summary.RecordCount, resp.Summary.P50DurationMinutes),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(labels).AddSeries("visits", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}),
	)
	return line
}

// RankingBar builds a horizontal bar chart of a frame ranking, busiest on top.
func RankingBar(ranking models.Ranking, o Options) *charts.Bar {
	o = o.withDefaults()

	names := make([]string, len(ranking.Entries))
	data := make([]opts.BarData, len(ranking.Entries))
	// Reversed so the first entry is drawn at the top of the y axis.
	for i, e := range ranking.Entries {
		j := len(ranking.Entries) - 1 - i
		names[j] = e.AreaName
		data[j] = opts.BarData{Value: round2(e.Value)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.initOpts(fmt.Sprintf("%dpx", 120+32*len(names)))),
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: fmt.Sprintf("%s, %d visits, %.0f min total", ranking.Metric, ranking.TotalVisits, ranking.TotalDurationMinutes),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries(string(ranking.Metric), data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
		)
	bar.XYReversal()
	return bar
}

// WriteTimeline renders the timeline page: stacked metric bars, the visits
// line and the whole-timeline ranking.
func WriteTimeline(w io.Writer, resp *models.TimelineResponse, o Options) error {
	o = o.withDefaults()

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.PageTitle = o.Title

	ranking := OverallRanking(resp.Buckets, o.Metric, o.TopAreas)
	page.AddCharts(
		TimelineBar(resp, o),
		VisitsLine(resp, o),
		RankingBar(ranking, Options{Title: "Busiest areas", Metric: o.Metric, AssetsHost: o.AssetsHost}),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render timeline chart: %w", err)
	}
	return nil
}

// WriteRanking renders a single frame ranking.
func WriteRanking(w io.Writer, ranking models.Ranking, o Options) error {
	if err := RankingBar(ranking, o).Render(w); err != nil {
		return fmt.Errorf("failed to render ranking chart: %w", err)
	}
	return nil
}

// OverallRanking ranks areas by their totals across every bucket.
func OverallRanking(buckets []models.TimeBucket, metric models.Metric, topN int) models.Ranking {
	return normalize.Rank(mergeAll(buckets), metric, topN)
}

// topAreaNames ranks areas over the whole timeline and returns up to n names.
func topAreaNames(buckets []models.TimeBucket, metric models.Metric, n int) []string {
	ranking := OverallRanking(buckets, metric, n)
	names := make([]string, 0, len(ranking.Entries))
	for _, e := range ranking.Entries {
		names = append(names, e.AreaName)
	}
	return names
}

// mergeAll sums every bucket's aggregates per area id.
func mergeAll(buckets []models.TimeBucket) []*models.RegionAggregate {
	totals := make(map[int64]*models.RegionAggregate)
	for i := range buckets {
		for id, agg := range buckets[i].Regions {
			t, ok := totals[id]
			if !ok {
				t = &models.RegionAggregate{AreaID: id, AreaName: agg.AreaName, AreaNumber: agg.AreaNumber}
				totals[id] = t
			}
			t.VisitCount += agg.VisitCount
			t.TotalDurationMinutes += agg.TotalDurationMinutes
		}
	}
	out := make([]*models.RegionAggregate, 0, len(totals))
	for _, t := range totals {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *models.RegionAggregate) int {
		return cmp.Compare(a.AreaID, b.AreaID)
	})
	return out
}

func groupByName(b *models.TimeBucket) map[string]*models.RegionAggregate {
	out := make(map[string]*models.RegionAggregate, len(b.Regions))
	for _, agg := range b.SortedRegions() {
		g, ok := out[agg.AreaName]
		if !ok {
			g = &models.RegionAggregate{AreaID: agg.AreaID, AreaName: agg.AreaName}
			out[agg.AreaName] = g
		}
		g.VisitCount += agg.VisitCount
		g.TotalDurationMinutes += agg.TotalDurationMinutes
	}
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
