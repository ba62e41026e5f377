package http

import "github.com/wChoros/OpenEduLog-backend/internal/model"

type gradeJSON struct {
	ID                 int64 `json:"id"`
	StudentID          int64 `json:"student_id"`
	SubjectOnTeacherID int64 `json:"subject_on_teacher_id"`
	Value              int   `json:"value"`
}

func toGradeJSON(g model.Grade) gradeJSON {
	return gradeJSON{ID: g.ID, StudentID: g.StudentID, SubjectOnTeacherID: g.SubjectOnTeacherID, Value: g.Value}
}

func toGradesJSON(grades []model.Grade) []gradeJSON {
	out := make([]gradeJSON, 0, len(grades))
	for _, g := range grades {
		out = append(out, toGradeJSON(g))
	}
	return out
}

type subjectJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toSubjectsJSON(subjects []model.Subject) []subjectJSON {
	out := make([]subjectJSON, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectJSON{ID: s.ID, Name: s.Name})
	}
	return out
}

type groupJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toGroupsJSON(groups []model.Group) []groupJSON {
	out := make([]groupJSON, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupJSON{ID: g.ID, Name: g.Name})
	}
	return out
}
