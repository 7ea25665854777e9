package stats

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

const terminalWidthBackup = 80

// RenderSummary prints the cumulative progress totals.
func RenderSummary(w io.Writer, report Report) error {
	totals := report.Totals
	if _, err := fmt.Fprintln(w, "Reading Progress"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Chapters read: %d / %d (%.1f%%)\n",
		totals.ChaptersRead, totals.TotalChapters, totals.ProgressPercent()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Verses read: %d\n", totals.TotalVersesRead); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time reading: %s\n", FormatDuration(totals.TotalTimeReading)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Favorites: %d\n", report.FavoritesCount); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderBooks prints the per-book coverage table. Books with no chapters
// read are skipped unless all is set.
func RenderBooks(w io.Writer, report Report, all bool) error {
	headers := []string{"Book", "Chapters", "Coverage"}
	rows := make([][]string, 0, len(report.Books))
	for _, book := range report.Books {
		if book.ChaptersRead == 0 && !all {
			continue
		}
		rows = append(rows, []string{
			book.Name,
			fmt.Sprintf("%d/%d", book.ChaptersRead, book.ChapterCount),
			fmt.Sprintf("%.0f%%", CoveragePercent(book)),
		})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No chapters read yet.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Per-Book Coverage"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatDuration renders a reading time as "3h 24m" (or "45s" under a
// minute).
func FormatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", total)
}

// TerminalWidth returns the stdout width, or a default when not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
