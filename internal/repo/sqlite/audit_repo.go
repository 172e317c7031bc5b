// Package sqlite holds the SQLite audit mirror backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geocoder89/alumniportal/internal/audit"
	"github.com/geocoder89/alumniportal/internal/observability"
)

const createUsersTable = `CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
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

const insertUser = `INSERT INTO users
    (user_type, full_name, roll_no, college_name, department, currently_working_as, address, email, mobile, password, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type AuditRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewAuditRepo(db *sql.DB, prom *observability.Prom) *AuditRepo {
	return &AuditRepo{db: db, prom: prom}
}

func (r *AuditRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveStore(op, fn)
	}
	return fn()
}

// EnsureSchema is safe to call on every start.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (r *AuditRepo) Insert(ctx context.Context, rec audit.Record) (int64, error) {
	var id int64

	err := r.observe("audit.insert", func() error {
		res, err := r.db.ExecContext(ctx, insertUser,
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
		)
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert audit row: %w", err)
	}

	return id, nil
}

func (r *AuditRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
