package http

import (
	"net/http"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
	"github.com/wChoros/OpenEduLog-backend/internal/policy"
)

func (s *Server) handleListStudentGrades(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadStudentGrades, policy.Resource{OwnerID: studentID}); !ok {
		return
	}

	grades, err := s.store.ListGradesByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGradesJSON(grades))
}

func (s *Server) handleListPairGrades(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		writeError(w, err)
		return
	}
	pairID, err := pathID(r, "pairID")
	if err != nil {
		writeError(w, err)
		return
	}

	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	linked, err := s.store.TeacherOwnsPair(r.Context(), pairID, principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadPairGrades, policy.Resource{OwnerID: studentID, Linked: linked}); !ok {
		return
	}

	grades, err := s.store.ListGradesByStudentAndPair(r.Context(), studentID, pairID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGradesJSON(grades))
}

type createGradeRequest struct {
	StudentID          int64 `json:"student_id"`
	SubjectOnTeacherID int64 `json:"subject_on_teacher_id"`
	Value              int   `json:"value"`
}

func (s *Server) handleCreateGrade(w http.ResponseWriter, r *http.Request) {
	var in createGradeRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.StudentID <= 0 || in.SubjectOnTeacherID <= 0 {
		writeError(w, apperr.Validation("Student id and subject pairing id are required"))
		return
	}

	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	linked, err := s.store.TeacherOwnsPair(r.Context(), in.SubjectOnTeacherID, principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionWriteGrade, policy.Resource{Linked: linked}); !ok {
		return
	}

	if _, err := s.store.GetSubjectOnTeacher(r.Context(), in.SubjectOnTeacherID); err != nil {
		writeError(w, err)
		return
	}
	isStudent, err := s.store.UserExistsWithRole(r.Context(), in.StudentID, model.RoleStudent)
	if err != nil {
		writeError(w, err)
		return
	}
	if !isStudent {
		writeError(w, apperr.NotFound("Student not found"))
		return
	}

	grade, err := s.store.CreateGrade(r.Context(), model.Grade{
		StudentID:          in.StudentID,
		SubjectOnTeacherID: in.SubjectOnTeacherID,
		Value:              in.Value,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGradeJSON(grade))
}

type updateGradeRequest struct {
	Value int `json:"value"`
}

func (s *Server) handleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	gradeID, err := pathID(r, "gradeID")
	if err != nil {
		writeError(w, err)
		return
	}
	var in updateGradeRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	grade, err := s.store.GetGrade(r.Context(), gradeID)
	if err != nil {
		writeError(w, err)
		return
	}

	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	linked, err := s.store.TeacherOwnsPair(r.Context(), grade.SubjectOnTeacherID, principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, ok := s.authorize(w, r, policy.ActionWriteGrade, policy.Resource{Linked: linked}); !ok {
		return
	}

	updated, err := s.store.UpdateGrade(r.Context(), gradeID, in.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGradeJSON(updated))
}

func (s *Server) handleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	gradeID, err := pathID(r, "gradeID")
	if err != nil {
		writeError(w, err)
		return
	}

	grade, err := s.store.GetGrade(r.Context(), gradeID)
	if err != nil {
		writeError(w, err)
		return
	}

	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	linked, err := s.store.TeacherOwnsPair(r.Context(), grade.SubjectOnTeacherID, principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, ok := s.authorize(w, r, policy.ActionWriteGrade, policy.Resource{Linked: linked}); !ok {
		return
	}

	if err := s.store.DeleteGrade(r.Context(), gradeID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
