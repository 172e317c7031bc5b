package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/alumniportal/internal/audit"
	"github.com/geocoder89/alumniportal/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createUsersTable = `CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    user_type TEXT NOT NULL,
    full_name TEXT,
    roll_no TEXT,
    college_name TEXT,
    department TEXT,
    currently_working_as TEXT,
    address TEXT,
    email TEXT,
    mobile TEXT,
    password TEXT,
    created_at TEXT
)`

type AuditRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAuditRepo(pool *pgxpool.Pool, prom *observability.Prom) *AuditRepo {
	return &AuditRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *AuditRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveStore(op, fn)
	}
	return fn()
}

func (repo *AuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := repo.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (repo *AuditRepo) Insert(ctx context.Context, rec audit.Record) (id int64, err error) {
	err = repo.observe("audit.insert", func() error {
		return repo.pool.QueryRow(ctx, `
		INSERT INTO users
			(user_type, full_name, roll_no, college_name, department, currently_working_as, address, email, mobile, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
			rec.UserType,
			rec.FullName,
			rec.RollNo,
			rec.CollegeName,
			rec.Department,
			rec.CurrentRole,
			rec.Address,
			rec.Email,
			rec.Mobile,
			rec.Password,
			rec.CreatedAt,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("insert audit row: %w", err)
	}

	return id, nil
}

func (repo *AuditRepo) Ping(ctx context.Context) error {
	return repo.pool.Ping(ctx)
}
