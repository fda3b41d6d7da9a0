package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BadWordsRepo struct {
	pool *pgxpool.Pool
}

func NewBadWordsRepo(pool *pgxpool.Pool) *BadWordsRepo {
	return &BadWordsRepo{pool: pool}
}

// Seed merges the configured terms into the table; words added by operators
// at runtime survive restarts.
func (r *BadWordsRepo) Seed(ctx context.Context, words []string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	for _, word := range words {
		if word == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx, `
INSERT INTO bad_words (word) VALUES ($1)
ON CONFLICT (word) DO NOTHING
`, word); err != nil {
			return fmt.Errorf("seed bad word: %w", err)
		}
	}

	return nil
}

func (r *BadWordsRepo) List(ctx context.Context) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT word FROM bad_words ORDER BY word
`)
	if err != nil {
		return nil, fmt.Errorf("list bad words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan bad word: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bad words: %w", err)
	}

	return words, nil
}

func (r *BadWordsRepo) Add(ctx context.Context, word string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if word == "" {
		return fmt.Errorf("empty bad word")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO bad_words (word) VALUES ($1)
ON CONFLICT (word) DO NOTHING
`, word); err != nil {
		return fmt.Errorf("add bad word: %w", err)
	}

	return nil
}
