package words

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// SQLDictionary is a word list stored in the `words` table of a SQLite
// database (see assets/sql). It is safe for concurrent use.
type SQLDictionary struct {
	db *sql.DB
}

// NewSQLDictionary wraps an already migrated database.
func NewSQLDictionary(db *sql.DB) *SQLDictionary {
	return &SQLDictionary{db: db}
}

// Seed inserts every word of l, ignoring words already present, and returns
// the number of rows added.
func (d *SQLDictionary) Seed(ctx context.Context, l *List) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO words(word, length) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, w := range l.words {
		res, err := stmt.ExecContext(ctx, w, utf8.RuneCountInString(w))
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", w, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return added, nil
}

// ContainsContext reports whether word is stored (case-insensitive).
func (d *SQLDictionary) ContainsContext(ctx context.Context, word string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM words WHERE word=?`, normalize(word)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Contains is ContainsContext without a deadline. Database errors are logged
// and treated as "not in dictionary".
func (d *SQLDictionary) Contains(word string) bool {
	ok, err := d.ContainsContext(context.Background(), word)
	if err != nil {
		log.Error().Err(err).Str("word", word).Msg("dictionary lookup")
		return false
	}
	return ok
}

// Count returns the number of stored words.
func (d *SQLDictionary) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM words`).Scan(&n)
	return n, err
}

// RandomOfLength picks a random stored word with n letters.
func (d *SQLDictionary) RandomOfLength(ctx context.Context, n int) (string, error) {
	var w string
	err := d.db.QueryRowContext(ctx,
		`SELECT word FROM words WHERE length=? ORDER BY RANDOM() LIMIT 1`, n,
	).Scan(&w)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrEmptyList
	}
	return w, err
}

// Supplier returns a Supplier of random stored words with n letters. When
// none is stored, or the query fails, it asks fallback instead.
func (d *SQLDictionary) Supplier(n int, fallback Supplier) Supplier {
	return func() string {
		w, err := d.RandomOfLength(context.Background(), n)
		if err != nil {
			if !errors.Is(err, ErrEmptyList) {
				log.Error().Err(err).Int("length", n).Msg("dictionary random word")
			}
			return fallback()
		}
		return w
	}
}

// Lookup exposes Contains as a Lookup capability.
func (d *SQLDictionary) Lookup() Lookup { return d.Contains }
