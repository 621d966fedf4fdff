package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"macro-risk-alerts/internal/alert"
)

// Show prints recent alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	filter := alert.Filter{}
	if opts.ActiveOnly {
		active := true
		filter.Active = &active
	}
	if opts.Type != "" {
		t := alert.Type(strings.ToUpper(opts.Type))
		filter.Type = &t
	}
	if opts.Severity != "" {
		s := alert.Severity(strings.ToUpper(opts.Severity))
		filter.Severity = &s
	}

	records, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tTriggered (UTC)\tType\tSeverity\tEntity\tCountry\tActive\tAck\tTitle")

	for _, rec := range records {
		fmt.Fprintf(
			writer,
			"%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			rec.TriggeredAt.UTC().Format(time.RFC3339),
			rec.Type,
			rec.Severity,
			rec.RelatedEntity,
			rec.Country,
			yesNo(rec.IsActive),
			yesNo(rec.Acknowledged),
			sanitizeInline(rec.Title),
		)
	}

	writer.Flush()
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
