package audit

import (
	"context"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
)

// CreatedAtLayout is the text form of Record.CreatedAt (UTC, milliseconds).
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// Record is the flattened audit copy of an identity. Nil pointers are
// written as NULL. It carries no reference to the canonical id.
type Record struct {
	UserType    string
	FullName    string
	RollNo      string
	CollegeName string
	Department  *string
	CurrentRole *string
	Address     string
	Email       *string
	Mobile      *string
	Password    *string
	CreatedAt   string
}

func RecordFromIdentity(i identity.Identity, mirroredAt time.Time) Record {
	return Record{
		UserType:    string(i.UserType),
		FullName:    i.FullName,
		RollNo:      i.RollNo,
		CollegeName: i.CollegeName,
		Department:  nullable(i.Department),
		CurrentRole: nullable(i.CurrentRole),
		Address:     i.Address,
		Email:       nullableString(i.Email),
		Mobile:      nullableString(i.Mobile),
		Password:    nullableString(i.Password),
		CreatedAt:   mirroredAt.UTC().Format(CreatedAtLayout),
	}
}

func nullable(p *string) *string {
	if p == nil {
		return nil
	}
	return nullableString(*p)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Writer appends one audit row and returns its store-assigned id.
type Writer interface {
	Insert(ctx context.Context, rec Record) (int64, error)
}

// Store is a relational backend owning the audit table.
type Store interface {
	Writer
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}
