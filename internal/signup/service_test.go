package signup

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/geocoder89/alumniportal/internal/repo/memory"
)

type fakeStore struct {
	CreateFn func(ctx context.Context, req identity.CreateRequest) (identity.Identity, error)
	calls    int
}

func (f *fakeStore) Create(ctx context.Context, req identity.CreateRequest) (identity.Identity, error) {
	f.calls++
	if f.CreateFn == nil {
		return identity.NewFromCreateRequest(strconv.Itoa(f.calls), req, time.Now().UTC()), nil
	}
	return f.CreateFn(ctx, req)
}

type fakeMirror struct {
	mu  sync.Mutex
	got []identity.Identity
}

func (f *fakeMirror) Mirror(i identity.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, i)
}

func (f *fakeMirror) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestSignup_MissingContactWritesNothing(t *testing.T) {
	store := &fakeStore{}
	mirror := &fakeMirror{}
	svc := NewService(store, mirror, nil, time.Second)

	tests := []struct {
		name string
		call func() error
	}{
		{"student", func() error {
			_, err := svc.SignupStudent(context.Background(), identity.StudentSignup{FullName: "Asha"})
			return err
		}},
		{"alumni blank contacts", func() error {
			_, err := svc.SignupAlumni(context.Background(), identity.AlumniSignup{FullName: "Ravi", Email: "  ", Mobile: "\t"})
			return err
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, identity.ErrMissingContact) {
				t.Fatalf("expected ErrMissingContact, got %v", err)
			}
			if !identity.IsValidation(err) {
				t.Fatalf("expected validation error, got %T", err)
			}
		})
	}

	if store.calls != 0 {
		t.Fatalf("expected no canonical writes, got %d", store.calls)
	}
	if mirror.count() != 0 {
		t.Fatalf("expected no mirror dispatch, got %d", mirror.count())
	}
}

func TestSignupStudent_StoresDepartmentOnly(t *testing.T) {
	mirror := &fakeMirror{}
	svc := NewService(memory.NewIdentitiesRepo(), mirror, nil, time.Second)

	got, err := svc.SignupStudent(context.Background(), identity.StudentSignup{
		FullName:    "Asha",
		RollNo:      "21CS01",
		CollegeName: "ABC",
		Department:  "CSE",
		Address:     "X",
		Email:       "asha@x.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.UserType != identity.Student {
		t.Fatalf("expected student, got %s", got.UserType)
	}
	if got.Department == nil || *got.Department != "CSE" {
		t.Fatalf("expected department CSE, got %v", got.Department)
	}
	if got.CurrentRole != nil {
		t.Fatalf("student must not carry currentRole")
	}
	if mirror.count() != 1 {
		t.Fatalf("expected one mirror dispatch, got %d", mirror.count())
	}
}

func TestSignupAlumni_StoresCurrentRoleOnly(t *testing.T) {
	svc := NewService(memory.NewIdentitiesRepo(), &fakeMirror{}, nil, time.Second)

	got, err := svc.SignupAlumni(context.Background(), identity.AlumniSignup{
		FullName:    "Ravi",
		CurrentRole: "SDE",
		Mobile:      "9999999999",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.CurrentRole == nil || *got.CurrentRole != "SDE" {
		t.Fatalf("expected currentRole SDE, got %v", got.CurrentRole)
	}
	if got.Department != nil {
		t.Fatalf("alumni must not carry department")
	}
}

func TestSignup_DuplicatesGetDistinctIDs(t *testing.T) {
	svc := NewService(memory.NewIdentitiesRepo(), nil, nil, time.Second)
	in := identity.StudentSignup{FullName: "Asha", Email: "asha@x.com"}

	a, err := svc.SignupStudent(context.Background(), in)
	if err != nil {
		t.Fatalf("first signup: %v", err)
	}
	b, err := svc.SignupStudent(context.Background(), in)
	if err != nil {
		t.Fatalf("second signup: %v", err)
	}

	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, both were %s", a.ID)
	}
}

func TestSignup_StoreErrorIsReturnedAndNotMirrored(t *testing.T) {
	boom := &identity.StoreError{Op: "create", Err: errors.New("no reachable servers")}
	store := &fakeStore{CreateFn: func(ctx context.Context, req identity.CreateRequest) (identity.Identity, error) {
		return identity.Identity{}, boom
	}}
	mirror := &fakeMirror{}
	svc := NewService(store, mirror, nil, time.Second)

	_, err := svc.SignupStudent(context.Background(), identity.StudentSignup{Email: "asha@x.com"})

	var storeErr *identity.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if mirror.count() != 0 {
		t.Fatalf("failed create must not be mirrored")
	}
}

func TestSignup_WriteSurvivesCallerCancel(t *testing.T) {
	store := &fakeStore{CreateFn: func(ctx context.Context, req identity.CreateRequest) (identity.Identity, error) {
		if err := ctx.Err(); err != nil {
			return identity.Identity{}, err
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("expected the store call to carry a deadline")
		}
		return identity.NewFromCreateRequest("1", req, time.Now()), nil
	}}
	svc := NewService(store, nil, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.SignupAlumni(ctx, identity.AlumniSignup{Mobile: "9999999999"}); err != nil {
		t.Fatalf("expected the write to ignore caller cancellation, got %v", err)
	}
}
