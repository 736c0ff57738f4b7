package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	s := &Summary{LeadsByStatus: make(map[string]int)}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE deleted_at IS NULL`).Scan(&s.TotalPatients)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE start_time >= $1 AND start_time < $2`,
		dayStart, dayEnd).Scan(&s.AppointmentsToday)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE status = ANY($1)`,
		[]string{"SCHEDULED", "PENDING"}).Scan(&s.OpenAppointments)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM lead GROUP BY status`)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.FromStorage(err)
		}
		s.LeadsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromStorage(err)
	}

	return s, nil
}
