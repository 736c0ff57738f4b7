package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
	"github.com/ElBenerDev/CRM/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, patient_id, start_time, duration_minutes, service_type, status, notes,
	created_by, created_at, updated_at`

func (r *repoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.StartTime, &a.DurationMinutes, &a.ServiceType,
		&a.Status, &a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &a, nil
}

// CreateIfSlotFree serializes the conflict check and insert in one
// transaction. The partial unique index on open appointments backstops
// concurrent inserts that both pass the check; its violation surfaces as
// apperr.ErrConflict.
func (r *repoPG) CreateIfSlotFree(ctx context.Context, a *Appointment) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		if a.Open() {
			taken, err := r.ExistsConflicting(ctx, a.StartTime, uuid.Nil)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflictf("slot %s is already booked", a.StartTime.Format(time.RFC3339))
			}
		}
		return r.insert(ctx, a)
	})
}

func (r *repoPG) insert(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, patient_id, start_time, duration_minutes, service_type, status, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.StartTime, a.DurationMinutes, a.ServiceType, a.Status, a.Notes, a.CreatedBy).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	return apperr.FromStorage(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, orderDesc bool, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.PatientID != nil {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, *f.Status)
		idx++
	}
	if f.From != nil {
		query += fmt.Sprintf(` AND start_time >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND start_time >= $%d`, idx)
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		query += fmt.Sprintf(` AND start_time <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND start_time <= $%d`, idx)
		args = append(args, *f.To)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStorage(err)
	}

	order := "ASC"
	if orderDesc {
		order = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY start_time %s LIMIT $%d OFFSET $%d`, order, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.FromStorage(err)
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET start_time=$2, duration_minutes=$3, service_type=$4,
			status=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.StartTime, a.DurationMinutes, a.ServiceType, a.Status, a.Notes)
	if err != nil {
		return apperr.FromStorage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("appointment %s", a.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStorage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("appointment %s", id)
	}
	return nil
}

func (r *repoPG) ExistsConflicting(ctx context.Context, slot time.Time, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM appointment
			WHERE start_time = $1 AND status = ANY($2) AND id <> $3)`,
		slot, openStatuses, excludeID).Scan(&exists)
	return exists, apperr.FromStorage(err)
}
