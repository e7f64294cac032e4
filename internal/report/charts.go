package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingflow/internal/models"
)

// smaPeriod is the moving average window drawn over latency charts with more points than this
const smaPeriod = 10

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var padding = chart.Style{
	Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
}

func axisStyle() chart.Style {
	return chart.Style{StrokeColor: drawing.ColorBlack, FontSize: 10}
}

func renderPNG(path string, render func(f *os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func (g *Generator) generateLatencyCharts(outputDir string, series []targetSeries) error {
	var errs []error
	for _, s := range series {
		xs, ys := s.latency()
		// go-chart rejects a zero-width range
		if len(xs) < 2 {
			log.WithField("target", s.target).Debug("not enough successful results for a latency chart")
			continue
		}

		ts := chart.TimeSeries{
			Name: s.target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(0),
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		}

		graph := chart.Chart{
			Title:      fmt.Sprintf("Network Latency - %s", s.target),
			TitleStyle: chart.Style{FontSize: 16},
			Background: padding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name:           "Time",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle(),
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name:           "Latency (ms)",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle(),
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{ts},
		}

		if len(ys) > smaPeriod {
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      smaPeriod,
			})
			graph.Elements = []chart.Renderable{chart.Legend(&graph)}
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(s.target)))
		if err := renderPNG(filename, func(f *os.File) error { return graph.Render(chart.PNG, f) }); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.target, err))
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) generateLossChart(outputDir string, series []targetSeries) error {
	var all []chart.Series
	var start, end time.Time
	for i, s := range series {
		xs, ys := s.hourlyLoss()
		if len(xs) == 0 {
			continue
		}
		if start.IsZero() || xs[0].Before(start) {
			start = xs[0]
		}
		if last := xs[len(xs)-1]; last.After(end) {
			end = last
		}
		all = append(all, chart.TimeSeries{
			Name: s.target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	if len(all) == 0 {
		return nil
	}
	if !end.After(start) {
		end = start.Add(time.Hour)
	}

	graph := chart.Chart{
		Title:      "Packet Loss (Hourly)",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle(),
			ValueFormatter: chart.TimeHourValueFormatter,
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(start),
				Max: chart.TimeToFloat64(end),
			},
		},
		YAxis: chart.YAxis{
			Name:  "Loss %",
			Style: axisStyle(),
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: gridStyle,
		},
		Series: all,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(filepath.Join(outputDir, "packet_loss.png"), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

func (g *Generator) generateOutageChart(outputDir string, outages []models.Outage) error {
	if len(outages) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	maxCount := 0
	for _, o := range outages {
		if _, ok := counts[o.Target]; !ok {
			order = append(order, o.Target)
		}
		counts[o.Target]++
		maxCount = max(maxCount, counts[o.Target])
	}

	values := make([]chart.Value, 0, len(order))
	for _, target := range order {
		values = append(values, chart.Value{Label: target, Value: float64(counts[target])})
	}

	graph := chart.BarChart{
		Title:      "Outages by Target",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1200,
		Height:     400,
		BarWidth:   40,
		YAxis: chart.YAxis{
			Style: axisStyle(),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
		},
		Bars: values,
	}

	return renderPNG(filepath.Join(outputDir, "outage_frequency.png"), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}
