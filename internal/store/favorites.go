package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/selahreader/selah/internal/model"
)

// AddFavorite bookmarks a verse. Returns false if it was already bookmarked.
func (s *Store) AddFavorite(ctx context.Context, fav model.Favorite) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites
		 (book_index, chapter_index, verse_index, verse_text, reference, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fav.Position.Book, fav.Position.Chapter, fav.Position.Verse,
		fav.Text, fav.Reference, fav.Note,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveFavorite deletes a bookmark. Returns false if it did not exist.
func (s *Store) RemoveFavorite(ctx context.Context, pos model.Position) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE book_index = ? AND chapter_index = ? AND verse_index = ?`,
		pos.Book, pos.Chapter, pos.Verse)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsFavorite reports whether a verse is bookmarked.
func (s *Store) IsFavorite(ctx context.Context, pos model.Position) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE book_index = ? AND chapter_index = ? AND verse_index = ?`,
		pos.Book, pos.Chapter, pos.Verse).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns all bookmarks, newest first.
func (s *Store) ListFavorites(ctx context.Context) ([]model.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_index, chapter_index, verse_index, verse_text, reference,
		        COALESCE(note, ''), created_at
		 FROM favorites ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var favorites []model.Favorite
	for rows.Next() {
		var fav model.Favorite
		var createdAt string
		if err := rows.Scan(&fav.ID, &fav.Position.Book, &fav.Position.Chapter,
			&fav.Position.Verse, &fav.Text, &fav.Reference, &fav.Note, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		fav.CreatedAt = parsed
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return favorites, nil
}

// UpdateFavoriteNote replaces the note on a bookmark. Returns false if the
// verse is not bookmarked.
func (s *Store) UpdateFavoriteNote(ctx context.Context, pos model.Position, note string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE favorites SET note = ?
		 WHERE book_index = ? AND chapter_index = ? AND verse_index = ?`,
		note, pos.Book, pos.Chapter, pos.Verse)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FavoritesCount returns the number of bookmarks.
func (s *Store) FavoritesCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&count)
	return count, err
}
