package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"waitroom/internal/metrics"
	"waitroom/internal/models"
)

func generateReactionChart(result models.GoNoGoResult) *charts.Line {
	stats := &metrics.Stats{Hits: result.Hits, ReactionTimes: result.ReactionTimesMs}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Reaction Time per Hit",
			Subtitle: fmt.Sprintf("mean %d ms, sd %.0f ms, accuracy %.0f%%",
				result.AvgReactionTimeMs, metrics.CalculateReactionTimeSD(stats), result.AccuracyRate*100),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "Hit",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  "ms",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(result.ReactionTimesMs))
	items := make([]opts.LineData, 0, len(result.ReactionTimesMs))
	for i, rt := range result.ReactionTimesMs {
		labels = append(labels, strconv.Itoa(i+1))
		items = append(items, opts.LineData{Value: rt})
	}

	line.SetXAxis(labels).
		AddSeries("Reaction time", items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
