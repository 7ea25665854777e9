// Package corpus loads Bible translations and resolves positions in them.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/selahreader/selah/internal/model"
)

// Translations supported by the reader.
var Translations = []string{"acf", "nvi"}

// ErrInvalidPosition reports a navigation target outside the corpus.
var ErrInvalidPosition = errors.New("position outside corpus bounds")

// LoadError reports a corpus file that could not be loaded. It is fatal at
// startup: no reading session can be built without a corpus.
type LoadError struct {
	Translation string
	Err         error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load translation %q: %v", e.Translation, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Book is one book of the corpus: an ordered list of chapters, each an
// ordered list of verse strings.
type Book struct {
	Abbrev   string     `json:"abbrev"`
	Chapters [][]string `json:"chapters"`
}

// Corpus is an immutable, fully loaded translation.
type Corpus struct {
	translation string
	books       []Book
}

// Load reads a translation file from dir. The files are JSON arrays of books;
// a UTF-8 BOM is tolerated.
func Load(dir, translation string) (*Corpus, error) {
	path := filepath.Join(dir, translation+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Translation: translation, Err: err}
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, &LoadError{Translation: translation, Err: err}
	}
	if len(books) == 0 {
		return nil, &LoadError{Translation: translation, Err: errors.New("corpus has no books")}
	}
	return &Corpus{translation: translation, books: books}, nil
}

// Translation returns the loaded translation identifier.
func (c *Corpus) Translation() string { return c.translation }

// BookCount returns the number of books.
func (c *Corpus) BookCount() int { return len(c.books) }

// BookLength returns the number of chapters in a book, or 0 if out of range.
func (c *Corpus) BookLength(book int) int {
	if book < 0 || book >= len(c.books) {
		return 0
	}
	return len(c.books[book].Chapters)
}

// ChapterLength returns the number of verses in a chapter, or 0 if out of range.
func (c *Corpus) ChapterLength(book, chapter int) int {
	if book < 0 || book >= len(c.books) {
		return 0
	}
	chapters := c.books[book].Chapters
	if chapter < 0 || chapter >= len(chapters) {
		return 0
	}
	return len(chapters[chapter])
}

// ChapterCount returns the total number of chapters across all books.
func (c *Corpus) ChapterCount() int {
	total := 0
	for _, b := range c.books {
		total += len(b.Chapters)
	}
	return total
}

// Contains reports whether the position resolves to an existing verse.
func (c *Corpus) Contains(pos model.Position) bool {
	return pos.Verse >= 0 && pos.Verse < c.ChapterLength(pos.Book, pos.Chapter)
}

// Verse returns the text at a position, or an error if it does not resolve.
func (c *Corpus) Verse(pos model.Position) (string, error) {
	if !c.Contains(pos) {
		return "", ErrInvalidPosition
	}
	return c.books[pos.Book].Chapters[pos.Chapter][pos.Verse], nil
}

// BookAbbrev returns the abbreviation of a book, or "" if out of range.
func (c *Corpus) BookAbbrev(book int) string {
	if book < 0 || book >= len(c.books) {
		return ""
	}
	return c.books[book].Abbrev
}

// Reference formats a position as "Book chapter:verse", one-based.
func (c *Corpus) Reference(pos model.Position) string {
	return fmt.Sprintf("%s %d:%d", BookName(c.BookAbbrev(pos.Book)), pos.Chapter+1, pos.Verse+1)
}

// Clamp maps an arbitrary position onto the nearest existing verse. Used when
// a persisted position no longer resolves for the selected translation.
func (c *Corpus) Clamp(pos model.Position) model.Position {
	if c.Contains(pos) {
		return pos
	}
	if pos.Book < 0 || pos.Book >= len(c.books) {
		return model.Position{}
	}
	if pos.Chapter < 0 || pos.Chapter >= c.BookLength(pos.Book) {
		return model.Position{Book: pos.Book}
	}
	if pos.Verse < 0 {
		return model.Position{Book: pos.Book, Chapter: pos.Chapter}
	}
	return model.Position{Book: pos.Book, Chapter: pos.Chapter, Verse: c.ChapterLength(pos.Book, pos.Chapter) - 1}
}

// Next returns the position one verse forward, crossing chapter and book
// boundaries. atEnd is true when pos is the final verse of the corpus, in
// which case pos is returned unchanged.
func (c *Corpus) Next(pos model.Position) (next model.Position, atEnd bool) {
	if pos.Verse+1 < c.ChapterLength(pos.Book, pos.Chapter) {
		return model.Position{Book: pos.Book, Chapter: pos.Chapter, Verse: pos.Verse + 1}, false
	}
	if pos.Chapter+1 < c.BookLength(pos.Book) {
		return model.Position{Book: pos.Book, Chapter: pos.Chapter + 1}, false
	}
	if pos.Book+1 < len(c.books) {
		return model.Position{Book: pos.Book + 1}, false
	}
	return pos, true
}

// Previous returns the position one verse backward, landing on the last verse
// of the previous chapter or book when crossing a boundary. atStart is true
// when pos is the first verse of the corpus.
func (c *Corpus) Previous(pos model.Position) (prev model.Position, atStart bool) {
	if pos.Verse > 0 {
		return model.Position{Book: pos.Book, Chapter: pos.Chapter, Verse: pos.Verse - 1}, false
	}
	if pos.Chapter > 0 {
		chapter := pos.Chapter - 1
		verse := c.ChapterLength(pos.Book, chapter) - 1
		if verse < 0 {
			verse = 0
		}
		return model.Position{Book: pos.Book, Chapter: chapter, Verse: verse}, false
	}
	if pos.Book > 0 {
		book := pos.Book - 1
		chapter := c.BookLength(book) - 1
		if chapter < 0 {
			chapter = 0
		}
		verse := c.ChapterLength(book, chapter) - 1
		if verse < 0 {
			verse = 0
		}
		return model.Position{Book: book, Chapter: chapter, Verse: verse}, false
	}
	return model.Position{}, true
}

// ListAvailable returns the translations that have a corpus file in dir.
func ListAvailable(dir string) ([]string, error) {
	var found []string
	for _, tr := range Translations {
		if _, err := os.Stat(filepath.Join(dir, tr+".json")); err == nil {
			found = append(found, tr)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat corpus file: %w", err)
		}
	}
	return found, nil
}
