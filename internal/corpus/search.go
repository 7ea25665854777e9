package corpus

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/selahreader/selah/internal/model"
)

// SearchResult is one verse matching a text query.
type SearchResult struct {
	Position  model.Position
	Text      string
	Reference string
	Highlight string // verse text with matches wrapped in **
}

// Search scans every verse for the query and returns up to limit results.
func (c *Corpus) Search(query string, limit int, caseSensitive bool) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}
	needle := query
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}
	var pattern *regexp.Regexp
	if !caseSensitive {
		pattern = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}

	var results []SearchResult
	for bi, book := range c.books {
		for ci, verses := range book.Chapters {
			for vi, text := range verses {
				haystack := text
				if !caseSensitive {
					haystack = strings.ToLower(haystack)
				}
				if !strings.Contains(haystack, needle) {
					continue
				}
				highlight := ""
				if caseSensitive {
					highlight = strings.ReplaceAll(text, query, "**"+query+"**")
				} else {
					highlight = pattern.ReplaceAllStringFunc(text, func(m string) string {
						return "**" + m + "**"
					})
				}
				pos := model.Position{Book: bi, Chapter: ci, Verse: vi}
				results = append(results, SearchResult{
					Position:  pos,
					Text:      text,
					Reference: c.Reference(pos),
					Highlight: highlight,
				})
				if len(results) >= limit {
					return results
				}
			}
		}
	}
	return results
}

var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d?\s*[^\d\s][^:]*?)\s+(\d+):(\d+)$`),
	regexp.MustCompile(`^(\d?\s*[^\d\s][^:]*?)\s+(\d+)$`),
}

// SearchReference resolves a reference like "João 3:16" or "jo 3" to a
// position. A chapter-only reference resolves to its first verse.
func (c *Corpus) SearchReference(reference string) (model.Position, bool) {
	reference = strings.TrimSpace(reference)
	for _, pattern := range referencePatterns {
		m := pattern.FindStringSubmatch(reference)
		if m == nil {
			continue
		}
		book, ok := c.findBook(m[1])
		if !ok {
			return model.Position{}, false
		}
		chapter, err := strconv.Atoi(m[2])
		if err != nil {
			return model.Position{}, false
		}
		chapter-- // one-based in references
		if chapter < 0 || chapter >= c.BookLength(book) {
			return model.Position{}, false
		}
		verse := 0
		if len(m) > 3 && m[3] != "" {
			verse, err = strconv.Atoi(m[3])
			if err != nil {
				return model.Position{}, false
			}
			verse--
			if verse < 0 || verse >= c.ChapterLength(book, chapter) {
				return model.Position{}, false
			}
		}
		return model.Position{Book: book, Chapter: chapter, Verse: verse}, true
	}
	return model.Position{}, false
}

// findBook matches a book by abbreviation, full name, or name prefix.
func (c *Corpus) findBook(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for i, book := range c.books {
		if strings.ToLower(book.Abbrev) == name {
			return i, true
		}
	}
	for i, book := range c.books {
		if strings.ToLower(BookName(book.Abbrev)) == name {
			return i, true
		}
	}
	for i, book := range c.books {
		if strings.HasPrefix(strings.ToLower(BookName(book.Abbrev)), name) {
			return i, true
		}
	}
	return 0, false
}
