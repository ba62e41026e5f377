package model

import "time"

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated identity resolved from a session token.
type Principal struct {
	ID   int64
	Role Role
}

type User struct {
	ID               int64
	FirstName        string
	LastName         string
	Email            string
	Login            string
	PasswordHash     string
	IsEmailConfirmed bool
	PhoneNumber      string
	BirthDate        time.Time
	AddressID        int64
	Role             Role
	CreatedAt        time.Time
}

type Address struct {
	ID      int64
	Street  string
	House   string
	City    string
	Zip     string
	Country string
}

// Session is an opaque-token server-side session. ExpiredAt is checked
// against the clock on every use and slides forward on each verification.
type Session struct {
	ID        string
	Token     string
	UserID    int64
	ExpiredAt time.Time
}

type Grade struct {
	ID                 int64
	StudentID          int64
	SubjectOnTeacherID int64
	Value              int
}

type Subject struct {
	ID   int64
	Name string
}

type Group struct {
	ID   int64
	Name string
}

// SubjectOnTeacher links a teacher to a subject they teach. Grades
// reference this pairing rather than the subject directly.
type SubjectOnTeacher struct {
	ID        int64
	TeacherID int64
	SubjectID int64
}

// GroupOnSubjectOnTeacher assigns a teacher-subject pairing to a group.
type GroupOnSubjectOnTeacher struct {
	ID        int64
	GroupID   int64
	SubjectID int64
	TeacherID int64
}

type StudentOnGroup struct {
	ID        int64
	StudentID int64
	GroupID   int64
}
