// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/selahreader/selah/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for settings, reading progress, and favorites.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chapters_read (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			book_abbrev TEXT NOT NULL,
			chapter_index INTEGER NOT NULL,
			read_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			UNIQUE(book_abbrev, chapter_index)
		);`,
		`CREATE TABLE IF NOT EXISTS reading_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_verses_read INTEGER NOT NULL DEFAULT 0,
			total_time_reading INTEGER NOT NULL DEFAULT 0
		);`,
		`INSERT OR IGNORE INTO reading_stats (id, total_verses_read, total_time_reading)
			VALUES (1, 0, 0);`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			book_index INTEGER NOT NULL,
			chapter_index INTEGER NOT NULL,
			verse_index INTEGER NOT NULL,
			verse_text TEXT NOT NULL,
			reference TEXT NOT NULL,
			note TEXT,
			created_at TEXT NOT NULL,
			UNIQUE(book_index, chapter_index, verse_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chapters_book ON chapters_read(book_abbrev);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Settings keys. Values are JSON-encoded so unknown keys round-trip and a
// corrupt value falls back to its default without losing the rest.
const (
	keyTranslation  = "bible_version"
	keyReadingMode  = "reading_mode"
	keyWordSpeed    = "word_speed"
	keyLastPosition = "last_position"
	keyMusicFolder  = "music_folder"
	keyMusicVolume  = "music_volume"
	keyMusicEnabled = "music_enabled"
	keyFontSize     = "font_size"
	keyNightMode    = "night_mode"
	keyFullscreen   = "fullscreen"
)

// LoadSettings reads the persisted settings record. Missing or undecodable
// keys keep their defaults.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		applySetting(&settings, key, []byte(value))
	}
	if err := rows.Err(); err != nil {
		return settings, err
	}
	return settings, nil
}

func applySetting(settings *model.Settings, key string, raw []byte) {
	switch key {
	case keyTranslation:
		var v string
		if json.Unmarshal(raw, &v) == nil {
			settings.Translation = v
		}
	case keyReadingMode:
		var v string
		if json.Unmarshal(raw, &v) == nil {
			settings.Reading.Mode = model.ParseMode(v)
		}
	case keyWordSpeed:
		var v float64
		if json.Unmarshal(raw, &v) == nil {
			settings.Reading.WordSpeed = model.ClampWordSpeed(v)
		}
	case keyLastPosition:
		var v model.Position
		if json.Unmarshal(raw, &v) == nil {
			settings.LastPosition = v
		}
	case keyMusicFolder:
		var v string
		if json.Unmarshal(raw, &v) == nil {
			settings.MusicFolder = v
		}
	case keyMusicVolume:
		var v float64
		if json.Unmarshal(raw, &v) == nil {
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			settings.MusicVolume = v
		}
	case keyMusicEnabled:
		var v bool
		if json.Unmarshal(raw, &v) == nil {
			settings.MusicEnabled = v
		}
	case keyFontSize:
		var v int
		if json.Unmarshal(raw, &v) == nil {
			settings.Reading.FontSize = model.ClampFontSize(v)
		}
	case keyNightMode:
		var v bool
		if json.Unmarshal(raw, &v) == nil {
			settings.Reading.NightMode = v
		}
	case keyFullscreen:
		var v bool
		if json.Unmarshal(raw, &v) == nil {
			settings.Reading.Fullscreen = v
		}
	}
	// Unknown keys are ignored for forward compatibility.
}

// SaveSettings writes the whole settings record in one transaction.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	values := map[string]any{
		keyTranslation:  settings.Translation,
		keyReadingMode:  string(settings.Reading.Mode),
		keyWordSpeed:    settings.Reading.WordSpeed,
		keyLastPosition: settings.LastPosition,
		keyMusicFolder:  settings.MusicFolder,
		keyMusicVolume:  settings.MusicVolume,
		keyMusicEnabled: settings.MusicEnabled,
		keyFontSize:     settings.Reading.FontSize,
		keyNightMode:    settings.Reading.NightMode,
		keyFullscreen:   settings.Reading.Fullscreen,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for key, value := range values {
		raw, merr := json.Marshal(value)
		if merr != nil {
			err = merr
			return err
		}
		if _, err = stmt.ExecContext(ctx, key, string(raw)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkChapterRead records a chapter as read. Re-marking is a no-op.
func (s *Store) MarkChapterRead(ctx context.Context, bookAbbrev string, chapter int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chapters_read (book_abbrev, chapter_index, read_at)
		 VALUES (?, ?, ?)`,
		bookAbbrev, chapter, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// IsChapterRead reports whether a chapter has been marked read.
func (s *Store) IsChapterRead(ctx context.Context, bookAbbrev string, chapter int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chapters_read WHERE book_abbrev = ? AND chapter_index = ?`,
		bookAbbrev, chapter).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ChaptersReadForBook returns the read chapter indexes of one book, ordered.
func (s *Store) ChaptersReadForBook(ctx context.Context, bookAbbrev string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter_index FROM chapters_read WHERE book_abbrev = ? ORDER BY chapter_index`,
		bookAbbrev)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var chapters []int
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chapters, nil
}

// TotalChaptersRead returns the number of distinct chapters read.
func (s *Store) TotalChaptersRead(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chapters_read`).Scan(&count)
	return count, err
}

// IncrementVersesRead adds count verse-display events to the running total.
func (s *Store) IncrementVersesRead(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE reading_stats SET total_verses_read = total_verses_read + ? WHERE id = 1`,
		count)
	return err
}

// AddReadingTime accumulates reading time, stored in whole seconds.
func (s *Store) AddReadingTime(ctx context.Context, d time.Duration) error {
	seconds := int64(d.Seconds())
	if seconds <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE reading_stats SET total_time_reading = total_time_reading + ? WHERE id = 1`,
		seconds)
	return err
}

// ReadingStats returns the cumulative progress counters.
func (s *Store) ReadingStats(ctx context.Context) (model.ReadingStats, error) {
	var stats model.ReadingStats
	var seconds int64
	err := s.db.QueryRowContext(ctx,
		`SELECT total_verses_read, total_time_reading FROM reading_stats WHERE id = 1`).
		Scan(&stats.TotalVersesRead, &seconds)
	if err != nil {
		return model.ReadingStats{}, err
	}
	stats.TotalTimeReading = time.Duration(seconds) * time.Second
	stats.ChaptersRead, err = s.TotalChaptersRead(ctx)
	if err != nil {
		return model.ReadingStats{}, err
	}
	return stats, nil
}

// ClearHistory erases chapter marks and resets the counters. Settings and
// favorites are untouched.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chapters_read`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE reading_stats SET total_verses_read = 0, total_time_reading = 0 WHERE id = 1`)
	return err
}
