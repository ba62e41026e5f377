package http

import (
	"context"
	"fmt"
	"time"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/auth"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

// fakeAuth issues predictable tokens for seeded credentials and keeps
// sessions in a map.
type fakeAuth struct {
	ttl      time.Duration
	accounts map[string]fakeAccount // login → account
	sessions map[string]model.Principal
	nextTok  int
}

type fakeAccount struct {
	password  string
	principal model.Principal
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		ttl:      time.Hour,
		accounts: make(map[string]fakeAccount),
		sessions: make(map[string]model.Principal),
	}
}

func (f *fakeAuth) addAccount(login, password string, p model.Principal) {
	f.accounts[login] = fakeAccount{password: password, principal: p}
}

// sessionFor seeds a live session directly, bypassing login.
func (f *fakeAuth) sessionFor(p model.Principal) string {
	f.nextTok++
	token := fmt.Sprintf("tok-%d", f.nextTok)
	f.sessions[token] = p
	return token
}

func (f *fakeAuth) Register(context.Context, auth.RegisterInput) (int64, error) {
	return 1, nil
}

func (f *fakeAuth) Login(_ context.Context, in auth.LoginInput) (string, model.Role, error) {
	acct, ok := f.accounts[in.Login]
	if !ok || acct.password != in.Password {
		return "", "", apperr.Auth("Invalid credentials")
	}
	token := f.sessionFor(acct.principal)
	return token, acct.principal.Role, nil
}

func (f *fakeAuth) VerifySession(_ context.Context, token string) (model.Principal, error) {
	p, ok := f.sessions[token]
	if !ok {
		return model.Principal{}, apperr.Auth("Invalid session")
	}
	return p, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	if _, ok := f.sessions[token]; !ok {
		return apperr.Auth("Invalid session or already logged out")
	}
	delete(f.sessions, token)
	return nil
}

func (f *fakeAuth) TTL() time.Duration { return f.ttl }

type membership struct{ studentID, groupID int64 }

type teaching struct{ teacherID, groupID, subjectID int64 }

// fakeStore keeps the relational data in maps. IDs are assigned by a
// single counter so tests can predict them.
type fakeStore struct {
	users    map[int64]model.Role
	grades   map[int64]model.Grade
	pairs    map[int64]model.SubjectOnTeacher
	subjects map[int64]model.Subject
	groups   map[int64]model.Group
	members  map[membership]bool
	teaches  map[teaching]bool
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]model.Role),
		grades:   make(map[int64]model.Grade),
		pairs:    make(map[int64]model.SubjectOnTeacher),
		subjects: make(map[int64]model.Subject),
		groups:   make(map[int64]model.Group),
		members:  make(map[membership]bool),
		teaches:  make(map[teaching]bool),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ListGradesByStudent(_ context.Context, studentID int64) ([]model.Grade, error) {
	out := []model.Grade{}
	for _, g := range f.grades {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) ListGradesByStudentAndPair(_ context.Context, studentID, pairID int64) ([]model.Grade, error) {
	out := []model.Grade{}
	for _, g := range f.grades {
		if g.StudentID == studentID && g.SubjectOnTeacherID == pairID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) GetGrade(_ context.Context, id int64) (model.Grade, error) {
	g, ok := f.grades[id]
	if !ok {
		return model.Grade{}, apperr.NotFound("Grade not found")
	}
	return g, nil
}

func (f *fakeStore) CreateGrade(_ context.Context, grade model.Grade) (model.Grade, error) {
	grade.ID = f.id()
	f.grades[grade.ID] = grade
	return grade, nil
}

func (f *fakeStore) UpdateGrade(_ context.Context, id int64, value int) (model.Grade, error) {
	g, ok := f.grades[id]
	if !ok {
		return model.Grade{}, apperr.NotFound("Grade not found")
	}
	g.Value = value
	f.grades[id] = g
	return g, nil
}

func (f *fakeStore) DeleteGrade(_ context.Context, id int64) error {
	if _, ok := f.grades[id]; !ok {
		return apperr.NotFound("Grade not found")
	}
	delete(f.grades, id)
	return nil
}

func (f *fakeStore) ListGroupsByStudent(_ context.Context, studentID int64) ([]model.Group, error) {
	out := []model.Group{}
	for m := range f.members {
		if m.studentID == studentID {
			out = append(out, f.groups[m.groupID])
		}
	}
	return out, nil
}

func (f *fakeStore) ListGroupsByTeacher(_ context.Context, teacherID int64) ([]model.Group, error) {
	seen := map[int64]bool{}
	out := []model.Group{}
	for t := range f.teaches {
		if t.teacherID == teacherID && !seen[t.groupID] {
			seen[t.groupID] = true
			out = append(out, f.groups[t.groupID])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGroup(_ context.Context, name string) (model.Group, error) {
	g := model.Group{ID: f.id(), Name: name}
	f.groups[g.ID] = g
	return g, nil
}

func (f *fakeStore) DeleteGroup(_ context.Context, id int64) error {
	if _, ok := f.groups[id]; !ok {
		return apperr.NotFound("Group not found")
	}
	delete(f.groups, id)
	return nil
}

func (f *fakeStore) AddStudentToGroup(_ context.Context, studentID, groupID int64) (model.StudentOnGroup, error) {
	m := membership{studentID, groupID}
	if f.members[m] {
		return model.StudentOnGroup{}, apperr.Conflict("Student is already in this group")
	}
	f.members[m] = true
	return model.StudentOnGroup{ID: f.id(), StudentID: studentID, GroupID: groupID}, nil
}

func (f *fakeStore) RemoveStudentFromGroup(_ context.Context, studentID, groupID int64) error {
	m := membership{studentID, groupID}
	if !f.members[m] {
		return apperr.NotFound("Student is not in this group")
	}
	delete(f.members, m)
	return nil
}

func (f *fakeStore) AddTeacherToGroup(_ context.Context, teacherID, groupID, subjectID int64) (model.GroupOnSubjectOnTeacher, error) {
	t := teaching{teacherID, groupID, subjectID}
	if f.teaches[t] {
		return model.GroupOnSubjectOnTeacher{}, apperr.Conflict("Teacher is already assigned to this group")
	}
	f.teaches[t] = true
	return model.GroupOnSubjectOnTeacher{ID: f.id(), GroupID: groupID, SubjectID: subjectID, TeacherID: teacherID}, nil
}

func (f *fakeStore) RemoveTeacherFromGroup(_ context.Context, teacherID, groupID, subjectID int64) error {
	t := teaching{teacherID, groupID, subjectID}
	if !f.teaches[t] {
		return apperr.NotFound("Teacher is not assigned to this group")
	}
	delete(f.teaches, t)
	return nil
}

func (f *fakeStore) GroupExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.groups[id]
	return ok, nil
}

func (f *fakeStore) ListSubjectsByStudent(_ context.Context, studentID int64) ([]model.Subject, error) {
	seen := map[int64]bool{}
	out := []model.Subject{}
	for m := range f.members {
		if m.studentID != studentID {
			continue
		}
		for t := range f.teaches {
			if t.groupID == m.groupID && !seen[t.subjectID] {
				seen[t.subjectID] = true
				out = append(out, f.subjects[t.subjectID])
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubjectsByTeacher(_ context.Context, teacherID int64) ([]model.Subject, error) {
	out := []model.Subject{}
	for _, p := range f.pairs {
		if p.TeacherID == teacherID {
			out = append(out, f.subjects[p.SubjectID])
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubjectsByGroup(_ context.Context, groupID int64) ([]model.Subject, error) {
	seen := map[int64]bool{}
	out := []model.Subject{}
	for t := range f.teaches {
		if t.groupID == groupID && !seen[t.subjectID] {
			seen[t.subjectID] = true
			out = append(out, f.subjects[t.subjectID])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSubject(_ context.Context, name string) (model.Subject, error) {
	s := model.Subject{ID: f.id(), Name: name}
	f.subjects[s.ID] = s
	return s, nil
}

func (f *fakeStore) UpdateSubject(_ context.Context, id int64, name string) (model.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return model.Subject{}, apperr.NotFound("Subject not found")
	}
	s.Name = name
	f.subjects[id] = s
	return s, nil
}

func (f *fakeStore) DeleteSubject(_ context.Context, id int64) error {
	if _, ok := f.subjects[id]; !ok {
		return apperr.NotFound("Subject not found")
	}
	delete(f.subjects, id)
	return nil
}

func (f *fakeStore) AssignTeacherToSubject(_ context.Context, teacherID, subjectID int64) (model.SubjectOnTeacher, error) {
	for _, p := range f.pairs {
		if p.TeacherID == teacherID && p.SubjectID == subjectID {
			return model.SubjectOnTeacher{}, apperr.Conflict("Teacher is already assigned to this subject")
		}
	}
	p := model.SubjectOnTeacher{ID: f.id(), TeacherID: teacherID, SubjectID: subjectID}
	f.pairs[p.ID] = p
	return p, nil
}

func (f *fakeStore) UnassignTeacherFromSubject(_ context.Context, teacherID, subjectID int64) error {
	for id, p := range f.pairs {
		if p.TeacherID == teacherID && p.SubjectID == subjectID {
			delete(f.pairs, id)
			return nil
		}
	}
	return apperr.NotFound("Teacher is not assigned to this subject")
}

func (f *fakeStore) SubjectExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.subjects[id]
	return ok, nil
}

func (f *fakeStore) TeacherOwnsPair(_ context.Context, pairID, teacherID int64) (bool, error) {
	p, ok := f.pairs[pairID]
	return ok && p.TeacherID == teacherID, nil
}

func (f *fakeStore) TeacherTeachesSubject(_ context.Context, teacherID, subjectID int64) (bool, error) {
	for _, p := range f.pairs {
		if p.TeacherID == teacherID && p.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) StudentInGroup(_ context.Context, studentID, groupID int64) (bool, error) {
	return f.members[membership{studentID, groupID}], nil
}

func (f *fakeStore) GetSubjectOnTeacher(_ context.Context, id int64) (model.SubjectOnTeacher, error) {
	p, ok := f.pairs[id]
	if !ok {
		return model.SubjectOnTeacher{}, apperr.NotFound("Subject pairing not found")
	}
	return p, nil
}

func (f *fakeStore) UserExistsWithRole(_ context.Context, id int64, role model.Role) (bool, error) {
	return f.users[id] == role, nil
}
