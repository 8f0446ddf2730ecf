package registrations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/zkpauth/internal/dbx"
	"github.com/dmitrijs2005/zkpauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reg *models.Registration) (bool, error) {

	query :=
		`INSERT INTO registrations (user_id, group_id, y1, y2)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (group_id, user_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, reg.UserID, reg.GroupID, reg.Y1, reg.Y2)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Registration, error) {

	query :=
		`SELECT user_id, group_id, y1, y2, created_at FROM registrations
		 WHERE group_id = $1
		 ORDER BY created_at, user_id
		 `

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.UserID, &reg.GroupID, &reg.Y1, &reg.Y2, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return regs, nil
}
