package leads

import (
	"context"
	"fmt"

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

const leadCols = `id, name, email, phone, status, source, expected_value, notes, patient_id,
	created_at, updated_at`

func (r *repoPG) scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Source,
		&l.ExpectedValue, &l.Notes, &l.PatientID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &l, nil
}

func (r *repoPG) Create(ctx context.Context, l *Lead) error {
	l.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lead (id, name, email, phone, status, source, expected_value, notes, patient_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		l.ID, l.Name, l.Email, l.Phone, l.Status, l.Source, l.ExpectedValue, l.Notes, l.PatientID).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	return apperr.FromStorage(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return r.scanLead(r.conn(ctx).QueryRow(ctx,
		`SELECT `+leadCols+` FROM lead WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Lead, int, error) {
	query := `SELECT ` + leadCols + ` FROM lead WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM lead WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, *f.Status)
		idx++
	}
	if f.MinValue != nil {
		query += fmt.Sprintf(` AND expected_value >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND expected_value >= $%d`, idx)
		args = append(args, *f.MinValue)
		idx++
	}
	if f.MaxValue != nil {
		query += fmt.Sprintf(` AND expected_value <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND expected_value <= $%d`, idx)
		args = append(args, *f.MaxValue)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStorage(err)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.FromStorage(err)
	}
	defer rows.Close()
	var items []*Lead
	for rows.Next() {
		l, err := r.scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

func (r *repoPG) Update(ctx context.Context, l *Lead) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lead SET name=$2, email=$3, phone=$4, status=$5, source=$6,
			expected_value=$7, notes=$8, patient_id=$9, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Email, l.Phone, l.Status, l.Source, l.ExpectedValue, l.Notes, l.PatientID)
	if err != nil {
		return apperr.FromStorage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("lead %s", l.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lead WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStorage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("lead %s", id)
	}
	return nil
}
