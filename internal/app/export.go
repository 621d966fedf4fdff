package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"macro-risk-alerts/internal/alert"
)

const defaultExportWindow = 30 * 24 * time.Hour

// Export renders alert history as CSV and/or a PNG of daily counts.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	if opts.MaxPoints <= 0 {
		opts.MaxPoints = a.Config.Export.MaxDataPoints
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-defaultExportWindow)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	records, err := store.List(ctx, alert.Filter{
		TriggeredAfter:  &from,
		TriggeredBefore: &to,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no alerts found for export window")
		return nil
	}

	// List returns newest first; exports read better oldest first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].TriggeredAt.Before(records[j].TriggeredAt)
	})

	a.Logger.Info().Int("total", len(records)).Msg("exporting alerts")

	if opts.CSVPath != "" {
		exported := downsampleRecords(records, opts.MaxPoints)
		if err := writeAlertsCSV(opts.CSVPath, exported); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeAlertsPNG(opts.PNGPath, records); err != nil {
			return err
		}
	}

	return nil
}

func downsampleRecords(records []alert.Record, max int) []alert.Record {
	if max <= 0 || len(records) <= max {
		return records
	}

	result := make([]alert.Record, 0, max)
	step := float64(len(records)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(records) {
			idx = len(records) - 1
		}
		result = append(result, records[idx])
	}
	return result
}

func writeAlertsCSV(path string, records []alert.Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "triggered_at", "type", "severity", "title", "related_entity", "related_value", "threshold_value", "country", "is_active", "acknowledged", "resolved_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		resolvedAt := ""
		if rec.ResolvedAt != nil {
			resolvedAt = rec.ResolvedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			fmt.Sprintf("%d", rec.ID),
			rec.TriggeredAt.UTC().Format(time.RFC3339),
			string(rec.Type),
			string(rec.Severity),
			rec.Title,
			rec.RelatedEntity,
			rec.RelatedValue.String(),
			rec.ThresholdValue.String(),
			rec.Country,
			yesNo(rec.IsActive),
			yesNo(rec.Acknowledged),
			resolvedAt,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeAlertsPNG(path string, records []alert.Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	type dayCounts struct {
		total    float64
		critical float64
		high     float64
	}
	byDay := make(map[time.Time]*dayCounts)
	for _, rec := range records {
		day := rec.TriggeredAt.UTC().Truncate(24 * time.Hour)
		counts, ok := byDay[day]
		if !ok {
			counts = &dayCounts{}
			byDay[day] = counts
		}
		counts.total++
		switch rec.Severity {
		case alert.SeverityCritical:
			counts.critical++
		case alert.SeverityHigh:
			counts.high++
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	x := make([]time.Time, len(days))
	total := make([]float64, len(days))
	critical := make([]float64, len(days))
	high := make([]float64, len(days))
	for i, day := range days {
		x[i] = day
		total[i] = byDay[day].total
		critical[i] = byDay[day].critical
		high[i] = byDay[day].high
	}

	countFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Alerts / day",
			ValueFormatter: countFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total",
				XValues: x,
				YValues: total,
			},
			chart.TimeSeries{
				Name:    "Critical",
				XValues: x,
				YValues: critical,
			},
			chart.TimeSeries{
				Name:    "High",
				XValues: x,
				YValues: high,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
