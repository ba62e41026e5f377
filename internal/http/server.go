// Package http exposes the REST surface. Handlers resolve resource
// facts, ask the policy engine for a decision, and delegate to the
// stores; role logic never lives here.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wChoros/OpenEduLog-backend/internal/auth"
	"github.com/wChoros/OpenEduLog-backend/internal/config"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
	"github.com/wChoros/OpenEduLog-backend/internal/policy"
)

// Authenticator is the session side of the server, implemented by
// auth.Service.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (int64, error)
	Login(ctx context.Context, in auth.LoginInput) (string, model.Role, error)
	VerifySession(ctx context.Context, token string) (model.Principal, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

// DataStore is the relational side of the server, implemented by
// repository.Store.
type DataStore interface {
	// Grades
	ListGradesByStudent(ctx context.Context, studentID int64) ([]model.Grade, error)
	ListGradesByStudentAndPair(ctx context.Context, studentID, pairID int64) ([]model.Grade, error)
	GetGrade(ctx context.Context, id int64) (model.Grade, error)
	CreateGrade(ctx context.Context, grade model.Grade) (model.Grade, error)
	UpdateGrade(ctx context.Context, id int64, value int) (model.Grade, error)
	DeleteGrade(ctx context.Context, id int64) error

	// Groups
	ListGroupsByStudent(ctx context.Context, studentID int64) ([]model.Group, error)
	ListGroupsByTeacher(ctx context.Context, teacherID int64) ([]model.Group, error)
	CreateGroup(ctx context.Context, name string) (model.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	AddStudentToGroup(ctx context.Context, studentID, groupID int64) (model.StudentOnGroup, error)
	RemoveStudentFromGroup(ctx context.Context, studentID, groupID int64) error
	AddTeacherToGroup(ctx context.Context, teacherID, groupID, subjectID int64) (model.GroupOnSubjectOnTeacher, error)
	RemoveTeacherFromGroup(ctx context.Context, teacherID, groupID, subjectID int64) error
	GroupExists(ctx context.Context, id int64) (bool, error)

	// Subjects
	ListSubjectsByStudent(ctx context.Context, studentID int64) ([]model.Subject, error)
	ListSubjectsByTeacher(ctx context.Context, teacherID int64) ([]model.Subject, error)
	ListSubjectsByGroup(ctx context.Context, groupID int64) ([]model.Subject, error)
	CreateSubject(ctx context.Context, name string) (model.Subject, error)
	UpdateSubject(ctx context.Context, id int64, name string) (model.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	AssignTeacherToSubject(ctx context.Context, teacherID, subjectID int64) (model.SubjectOnTeacher, error)
	UnassignTeacherFromSubject(ctx context.Context, teacherID, subjectID int64) error
	SubjectExists(ctx context.Context, id int64) (bool, error)

	// Linkage and existence facts for authorization
	TeacherOwnsPair(ctx context.Context, pairID, teacherID int64) (bool, error)
	TeacherTeachesSubject(ctx context.Context, teacherID, subjectID int64) (bool, error)
	StudentInGroup(ctx context.Context, studentID, groupID int64) (bool, error)
	GetSubjectOnTeacher(ctx context.Context, id int64) (model.SubjectOnTeacher, error)
	UserExistsWithRole(ctx context.Context, id int64, role model.Role) (bool, error)
}

type Server struct {
	cfg   config.Config
	auth  Authenticator
	store DataStore
}

func NewServer(cfg config.Config, authSvc Authenticator, store DataStore) *Server {
	return &Server{cfg: cfg, auth: authSvc, store: store}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Route("/grades", func(r chi.Router) {
		r.Use(s.sessionAuth)
		r.Get("/{studentID}", s.handleListStudentGrades)
		r.Get("/{studentID}/{pairID}", s.handleListPairGrades)
		r.Post("/", s.handleCreateGrade)
		r.Put("/{gradeID}", s.handleUpdateGrade)
		r.Delete("/{gradeID}", s.handleDeleteGrade)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Use(s.sessionAuth)
		r.Get("/student/{studentID}", s.handleListStudentGroups)
		r.Get("/teacher/{teacherID}", s.handleListTeacherGroups)
		r.Post("/", s.handleCreateGroup)
		r.Delete("/{groupID}", s.handleDeleteGroup)
		r.Post("/students", s.handleAddStudentToGroup)
		r.Delete("/students", s.handleRemoveStudentFromGroup)
		r.Post("/teachers", s.handleAddTeacherToGroup)
		r.Delete("/teachers", s.handleRemoveTeacherFromGroup)
	})

	r.Route("/subjects", func(r chi.Router) {
		r.Use(s.sessionAuth)
		r.Get("/student/{studentID}", s.handleListStudentSubjects)
		r.Get("/teacher/{teacherID}", s.handleListTeacherSubjects)
		r.Get("/group/{groupID}", s.handleListGroupSubjects)
		r.Post("/", s.handleCreateSubject)
		r.Put("/{subjectID}", s.handleUpdateSubject)
		r.Delete("/{subjectID}", s.handleDeleteSubject)
		r.Post("/teachers", s.handleAssignTeacher)
		r.Delete("/teachers", s.handleUnassignTeacher)
	})

	return r
}

type principalKey struct{}

// sessionAuth verifies the session cookie, renews the session and
// attaches the resolved principal to the request context.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			sessionChecksTotal.WithLabelValues("missing").Inc()
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := s.auth.VerifySession(r.Context(), token)
		if err != nil {
			sessionChecksTotal.WithLabelValues("rejected").Inc()
			writeError(w, err)
			return
		}
		sessionChecksTotal.WithLabelValues("ok").Inc()

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(model.Principal)
	return principal, ok
}

// authorize fetches the principal from the context and checks the
// action against the policy table. It writes the refusal itself and
// reports whether the handler may proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, action policy.Action, res policy.Resource) (model.Principal, bool) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return model.Principal{}, false
	}
	if policy.Authorize(principal, action, res) != policy.Allow {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return model.Principal{}, false
	}
	return principal, true
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
