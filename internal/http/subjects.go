package http

import (
	"net/http"
	"strings"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
	"github.com/wChoros/OpenEduLog-backend/internal/policy"
)

func (s *Server) handleListStudentSubjects(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadStudentSubjects, policy.Resource{OwnerID: studentID}); !ok {
		return
	}

	subjects, err := s.store.ListSubjectsByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectsJSON(subjects))
}

func (s *Server) handleListTeacherSubjects(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadTeacherSubjects, policy.Resource{OwnerID: teacherID}); !ok {
		return
	}

	subjects, err := s.store.ListSubjectsByTeacher(r.Context(), teacherID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectsJSON(subjects))
}

func (s *Server) handleListGroupSubjects(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}

	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	linked, err := s.store.StudentInGroup(r.Context(), principal.ID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadGroupSubjects, policy.Resource{Linked: linked}); !ok {
		return
	}

	subjects, err := s.store.ListSubjectsByGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectsJSON(subjects))
}

type subjectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var in subjectRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, apperr.Validation("Subject name is required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageSubjects, policy.Resource{}); !ok {
		return
	}

	subject, err := s.store.CreateSubject(r.Context(), in.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subjectJSON{ID: subject.ID, Name: subject.Name})
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "subjectID")
	if err != nil {
		writeError(w, err)
		return
	}
	var in subjectRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, apperr.Validation("Subject name is required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageSubjects, policy.Resource{}); !ok {
		return
	}

	subject, err := s.store.UpdateSubject(r.Context(), subjectID, in.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subjectJSON{ID: subject.ID, Name: subject.Name})
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "subjectID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageSubjects, policy.Resource{}); !ok {
		return
	}

	if err := s.store.DeleteSubject(r.Context(), subjectID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subjectTeacherRequest struct {
	TeacherID int64 `json:"teacher_id"`
	SubjectID int64 `json:"subject_id"`
}

func (s *Server) handleAssignTeacher(w http.ResponseWriter, r *http.Request) {
	var in subjectTeacherRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.TeacherID <= 0 || in.SubjectID <= 0 {
		writeError(w, apperr.Validation("Teacher id and subject id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageSubjects, policy.Resource{}); !ok {
		return
	}

	isTeacher, err := s.store.UserExistsWithRole(r.Context(), in.TeacherID, model.RoleTeacher)
	if err != nil {
		writeError(w, err)
		return
	}
	if !isTeacher {
		writeError(w, apperr.NotFound("Teacher not found"))
		return
	}
	exists, err := s.store.SubjectExists(r.Context(), in.SubjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeError(w, apperr.NotFound("Subject not found"))
		return
	}

	if _, err := s.store.AssignTeacherToSubject(r.Context(), in.TeacherID, in.SubjectID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Teacher assigned to subject")
}

func (s *Server) handleUnassignTeacher(w http.ResponseWriter, r *http.Request) {
	var in subjectTeacherRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.TeacherID <= 0 || in.SubjectID <= 0 {
		writeError(w, apperr.Validation("Teacher id and subject id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageSubjects, policy.Resource{}); !ok {
		return
	}

	if err := s.store.UnassignTeacherFromSubject(r.Context(), in.TeacherID, in.SubjectID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
