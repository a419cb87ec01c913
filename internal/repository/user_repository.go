package repository

import (
	"context"
	"fmt"

	"github.com/consulthub/scheduler-api/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// ActorExists проверяет существование пользователя по ID
func (r *UserRepository) ActorExists(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users WHERE id = $1
		)
	`

	var exists bool
	err := base.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check actor exists: %w", err)
	}

	return exists, nil
}
