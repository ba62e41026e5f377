// Package policy is the single place role rules live. Handlers resolve
// the facts about a resource (who owns it, whether the caller is linked
// to it) and ask for a decision; they never test roles themselves.
package policy

import "github.com/wChoros/OpenEduLog-backend/internal/model"

type Action string

const (
	// Grades
	ActionReadStudentGrades Action = "grades:read_student"
	ActionReadPairGrades    Action = "grades:read_pair"
	ActionWriteGrade        Action = "grades:write"

	// Groups
	ActionReadStudentGroups Action = "groups:read_student"
	ActionReadTeacherGroups Action = "groups:read_teacher"
	ActionManageGroups      Action = "groups:manage"

	// Subjects
	ActionReadStudentSubjects Action = "subjects:read_student"
	ActionReadTeacherSubjects Action = "subjects:read_teacher"
	ActionReadGroupSubjects   Action = "subjects:read_group"
	ActionManageSubjects      Action = "subjects:manage"
)

// Actions lists every known action; tests iterate it to keep the rule
// table closed.
var Actions = []Action{
	ActionReadStudentGrades,
	ActionReadPairGrades,
	ActionWriteGrade,
	ActionReadStudentGroups,
	ActionReadTeacherGroups,
	ActionManageGroups,
	ActionReadStudentSubjects,
	ActionReadTeacherSubjects,
	ActionReadGroupSubjects,
	ActionManageSubjects,
}

// Resource carries the facts the caller resolved about the record being
// accessed. OwnerID is the user the resource is scoped to (the student
// whose grades, the teacher whose groups). Linked reports whether the
// principal is associated with the resource's scope: for a teacher, an
// owned teacher-subject pairing; for a student, membership in the group.
type Resource struct {
	OwnerID int64
	Linked  bool
}

type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

type rule int

const (
	deny rule = iota
	allow
	allowOwner
	allowLinked
)

// The role×action table. Absence of an entry is a deny; nothing below
// falls through to an implicit allow.
var rules = map[model.Role]map[Action]rule{
	model.RoleStudent: {
		ActionReadStudentGrades:   allowOwner,
		ActionReadPairGrades:      allowOwner,
		ActionWriteGrade:          deny,
		ActionReadStudentGroups:   allowOwner,
		ActionReadTeacherGroups:   deny,
		ActionManageGroups:        deny,
		ActionReadStudentSubjects: allowOwner,
		ActionReadTeacherSubjects: deny,
		ActionReadGroupSubjects:   allowLinked,
		ActionManageSubjects:      deny,
	},
	model.RoleTeacher: {
		ActionReadStudentGrades:   deny,
		ActionReadPairGrades:      allowLinked,
		ActionWriteGrade:          allowLinked,
		ActionReadStudentGroups:   deny,
		ActionReadTeacherGroups:   allowOwner,
		ActionManageGroups:        deny,
		ActionReadStudentSubjects: deny,
		ActionReadTeacherSubjects: allowOwner,
		ActionReadGroupSubjects:   deny,
		ActionManageSubjects:      deny,
	},
	model.RoleAdmin: {
		ActionReadStudentGrades:   allow,
		ActionReadPairGrades:      allow,
		ActionWriteGrade:          allow,
		ActionReadStudentGroups:   allow,
		ActionReadTeacherGroups:   allow,
		ActionManageGroups:        allow,
		ActionReadStudentSubjects: allow,
		ActionReadTeacherSubjects: allow,
		ActionReadGroupSubjects:   allow,
		ActionManageSubjects:      allow,
	},
}

// Authorize is a pure decision over the principal, the action and the
// resolved resource facts.
func Authorize(p model.Principal, action Action, res Resource) Decision {
	perRole, ok := rules[p.Role]
	if !ok {
		return Deny
	}
	switch perRole[action] {
	case allow:
		return Allow
	case allowOwner:
		if res.OwnerID == p.ID {
			return Allow
		}
	case allowLinked:
		if res.Linked {
			return Allow
		}
	}
	return Deny
}
