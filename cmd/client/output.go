package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/antonio-alexander/go-org-directory/internal/data"

	"github.com/gookit/color"
)

// printTable writes rows aligned under a bold header, followed by a summary
// of the window relative to count.
func printTable(w io.Writer, header []string, rows [][]string, pageRequest data.PageRequest, count int) error {
	var table strings.Builder

	//KIM: columns are aligned before coloring, tabwriter counts escape codes as width
	tw := tabwriter.NewWriter(&table, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	lines := strings.SplitAfterN(table.String(), "\n", 2)
	if _, err := fmt.Fprint(w, color.Bold.Sprint(lines[0])); err != nil {
		return err
	}
	if len(lines) > 1 {
		if _, err := fmt.Fprint(w, lines[1]); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, color.Yellow.Sprintf("no items (count: %d)", count))
		return err
	}
	first := pageRequest.Offset + 1
	last := pageRequest.Offset + len(rows)
	_, err := fmt.Fprintln(w, color.Green.Sprintf("%d-%d of %d", first, last, count))
	return err
}
