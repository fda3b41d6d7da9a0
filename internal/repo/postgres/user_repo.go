package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetOrCreate registers the user on first contact. Existing rows only refresh
// the username; the agreed flag is never reset here.
func (r *UserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username)
VALUES ($1, $2)
ON CONFLICT (telegram_id) DO UPDATE SET
	username = EXCLUDED.username
RETURNING telegram_id, username, agreed_rules, created_at
`, telegramID, username).Scan(&user.TelegramID, &user.Username, &user.AgreedRules, &user.CreatedAt)
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) Get(ctx context.Context, telegramID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT telegram_id, username, agreed_rules, created_at
FROM users
WHERE telegram_id = $1
`, telegramID).Scan(&user.TelegramID, &user.Username, &user.AgreedRules, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) SetAgreedRules(ctx context.Context, telegramID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return fmt.Errorf("invalid telegram id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users SET agreed_rules = TRUE WHERE telegram_id = $1
`, telegramID); err != nil {
		return fmt.Errorf("set agreed rules: %w", err)
	}

	return nil
}
