// Package stats contains reading statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Totals         model.ReadingStats
	Books          []model.BookCoverage
	FavoritesCount int
}

// BuildReport loads and prepares reading progress data for rendering.
func BuildReport(ctx context.Context, st *store.Store, c *corpus.Corpus) (Report, error) {
	totals, err := st.ReadingStats(ctx)
	if err != nil {
		return Report{}, err
	}
	totals.TotalChapters = c.ChapterCount()

	books := make([]model.BookCoverage, 0, c.BookCount())
	for i := 0; i < c.BookCount(); i++ {
		abbrev := c.BookAbbrev(i)
		read, err := st.ChaptersReadForBook(ctx, abbrev)
		if err != nil {
			return Report{}, err
		}
		books = append(books, model.BookCoverage{
			Abbrev:       abbrev,
			Name:         corpus.BookName(abbrev),
			ChaptersRead: len(read),
			ChapterCount: c.BookLength(i),
		})
	}

	favorites, err := st.FavoritesCount(ctx)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Totals:         totals,
		Books:          books,
		FavoritesCount: favorites,
	}, nil
}

// CoveragePercent returns the share of a book's chapters marked read.
func CoveragePercent(b model.BookCoverage) float64 {
	if b.ChapterCount == 0 {
		return 0
	}
	return float64(b.ChaptersRead) / float64(b.ChapterCount) * 100
}
