package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"odonto-console/internal/models"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

// Record appends one session event
func (r *LoginLogRepository) Record(ctx context.Context, entry *models.LoginLog) error {
	query := `
		INSERT INTO console_login_logs (user_id, email, event, session_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.DB.QueryRow(ctx, query,
		entry.UserID, entry.Email, entry.Event, entry.SessionID, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent returns the newest events first
func (r *LoginLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	query := `
		SELECT id, user_id, email, event, COALESCE(session_id, ''),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM console_login_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.LoginLog
	for rows.Next() {
		l := &models.LoginLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Email, &l.Event, &l.SessionID,
			&l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
