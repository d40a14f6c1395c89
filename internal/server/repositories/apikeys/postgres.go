package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/dbx"
	"github.com/mkovalev/chatvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {

	query :=
		`INSERT INTO api_keys (user_id, ai_model, key_ciphertext, key_nonce)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, ai_model)
		 DO UPDATE SET key_ciphertext = EXCLUDED.key_ciphertext, key_nonce = EXCLUDED.key_nonce
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		key.UserID, key.AIModel, key.Ciphertext, key.Nonce).Scan(&key.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return key, nil
}

func (r *PostgresRepository) GetByUserAndModel(ctx context.Context, userID int64, aiModel string) (*models.APIKey, error) {
	query :=
		`SELECT id, user_id, ai_model, key_ciphertext, key_nonce FROM api_keys
		 WHERE user_id = $1 AND ai_model = $2
		 `

	key := &models.APIKey{}
	err := r.db.QueryRowContext(ctx, query, userID, aiModel).Scan(
		&key.ID, &key.UserID, &key.AIModel, &key.Ciphertext, &key.Nonce)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return key, nil
}

func (r *PostgresRepository) ListModels(ctx context.Context, userID int64) ([]string, error) {
	query :=
		`SELECT ai_model FROM api_keys
		 WHERE user_id = $1
		 ORDER BY id ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	aiModels := make([]string, 0)
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		aiModels = append(aiModels, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return aiModels, nil
}
