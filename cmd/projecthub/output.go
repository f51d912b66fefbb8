package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/straye-as/projecthub/internal/domain"
)

// render prints v as indented JSON with --json, otherwise as the table
// drawn by rows
func (a *app) render(v interface{}, header string, rows func(w *tabwriter.Writer)) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if header != "" {
		fmt.Fprintln(w, header)
	}
	rows(w)
	return w.Flush()
}

func (a *app) done(format string, args ...interface{}) error {
	if a.jsonOutput {
		return a.render(map[string]string{"result": fmt.Sprintf(format, args...)}, "", nil)
	}
	_, err := fmt.Fprintf(a.out, format+"\n", args...)
	return err
}

func pageFooter[T any](w *tabwriter.Writer, p *domain.Page[T]) {
	fmt.Fprintf(w, "\npage %d/%d\t%d total\n", p.Number+1, max(p.TotalPages, 1), p.TotalElements)
}

func formatTime(ts domain.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(time.DateTime)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
