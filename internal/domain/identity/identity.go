package identity

import (
	"strings"
	"time"
)

type UserType string

const (
	Student UserType = "student"
	Alumni  UserType = "alumni"
)

func (t UserType) Valid() bool {
	return t == Student || t == Alumni
}

// Identity is the authoritative record kept in the canonical store.
// Department is only set for students, CurrentRole only for alumni.
type Identity struct {
	ID          string    `json:"id"`
	UserType    UserType  `json:"userType"`
	FullName    string    `json:"fullName"`
	RollNo      string    `json:"rollNo"`
	CollegeName string    `json:"collegeName"`
	Department  *string   `json:"department,omitempty"`
	CurrentRole *string   `json:"currentRole,omitempty"`
	Address     string    `json:"address"`
	Email       string    `json:"email,omitempty"`
	Mobile      string    `json:"mobile,omitempty"`
	Password    string    `json:"-"` // stored verbatim, never verified
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRequest is the variant-resolved field set handed to the canonical store.
type CreateRequest struct {
	UserType    UserType
	FullName    string
	RollNo      string
	CollegeName string
	Department  *string
	CurrentRole *string
	Address     string
	Email       string
	Mobile      string
	Password    string
}

type StudentSignup struct {
	FullName    string `json:"fullName" binding:"max=200"`
	RollNo      string `json:"rollNo" binding:"max=64"`
	CollegeName string `json:"collegeName" binding:"max=200"`
	Department  string `json:"department" binding:"max=120"`
	Address     string `json:"address" binding:"max=500"`
	Email       string `json:"email" binding:"max=254"`
	Mobile      string `json:"mobile" binding:"max=32"`
	Password    string `json:"password" binding:"max=128"`
}

type AlumniSignup struct {
	FullName    string `json:"fullName" binding:"max=200"`
	RollNo      string `json:"rollNo" binding:"max=64"`
	CollegeName string `json:"collegeName" binding:"max=200"`
	CurrentRole string `json:"currentRole" binding:"max=120"`
	Address     string `json:"address" binding:"max=500"`
	Email       string `json:"email" binding:"max=254"`
	Mobile      string `json:"mobile" binding:"max=32"`
	Password    string `json:"password" binding:"max=128"`
}

// CreateRequest keeps department and drops currentRole.
func (s StudentSignup) CreateRequest() CreateRequest {
	department := s.Department

	return CreateRequest{
		UserType:    Student,
		FullName:    s.FullName,
		RollNo:      s.RollNo,
		CollegeName: s.CollegeName,
		Department:  &department,
		Address:     s.Address,
		Email:       NormalizeContact(s.Email),
		Mobile:      NormalizeContact(s.Mobile),
		Password:    s.Password,
	}
}

// CreateRequest keeps currentRole and drops department.
func (s AlumniSignup) CreateRequest() CreateRequest {
	role := s.CurrentRole

	return CreateRequest{
		UserType:    Alumni,
		FullName:    s.FullName,
		RollNo:      s.RollNo,
		CollegeName: s.CollegeName,
		CurrentRole: &role,
		Address:     s.Address,
		Email:       NormalizeContact(s.Email),
		Mobile:      NormalizeContact(s.Mobile),
		Password:    s.Password,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"max=254"`
	Mobile   string `json:"mobile" binding:"max=32"`
	Password string `json:"password"` // accepted and ignored
}

// A factory to build an Identity from a create request. Stores call it so
// that the variant rules hold no matter which backend is in use.
func NewFromCreateRequest(id string, req CreateRequest, now time.Time) Identity {
	i := Identity{
		ID:          id,
		UserType:    req.UserType,
		FullName:    req.FullName,
		RollNo:      req.RollNo,
		CollegeName: req.CollegeName,
		Address:     req.Address,
		Email:       req.Email,
		Mobile:      req.Mobile,
		Password:    req.Password,
		CreatedAt:   now,
	}

	switch req.UserType {
	case Student:
		i.Department = req.Department
	case Alumni:
		i.CurrentRole = req.CurrentRole
	}

	return i
}

// NormalizeContact trims surrounding whitespace so that signup and login
// compare the same value.
func NormalizeContact(v string) string {
	return strings.TrimSpace(v)
}

// MatchesContact reports whether i matches email OR mobile. Empty arguments
// never match, so an identity without a mobile is not found by mobile="".
func (i Identity) MatchesContact(email, mobile string) bool {
	if email != "" && i.Email == email {
		return true
	}

	return mobile != "" && i.Mobile == mobile
}
