package http

import (
	"net/http"
	"strings"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
	"github.com/wChoros/OpenEduLog-backend/internal/policy"
)

func (s *Server) handleListStudentGroups(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadStudentGroups, policy.Resource{OwnerID: studentID}); !ok {
		return
	}

	groups, err := s.store.ListGroupsByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupsJSON(groups))
}

func (s *Server) handleListTeacherGroups(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionReadTeacherGroups, policy.Resource{OwnerID: teacherID}); !ok {
		return
	}

	groups, err := s.store.ListGroupsByTeacher(r.Context(), teacherID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupsJSON(groups))
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var in createGroupRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, apperr.Validation("Group name is required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
		return
	}

	group, err := s.store.CreateGroup(r.Context(), in.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupJSON{ID: group.ID, Name: group.Name})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
		return
	}

	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupMembershipRequest struct {
	StudentID int64 `json:"student_id"`
	GroupID   int64 `json:"group_id"`
}

func (s *Server) handleAddStudentToGroup(w http.ResponseWriter, r *http.Request) {
	var in groupMembershipRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.StudentID <= 0 || in.GroupID <= 0 {
		writeError(w, apperr.Validation("Student id and group id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
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
	exists, err := s.store.GroupExists(r.Context(), in.GroupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeError(w, apperr.NotFound("Group not found"))
		return
	}

	if _, err := s.store.AddStudentToGroup(r.Context(), in.StudentID, in.GroupID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Student added to group")
}

func (s *Server) handleRemoveStudentFromGroup(w http.ResponseWriter, r *http.Request) {
	var in groupMembershipRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.StudentID <= 0 || in.GroupID <= 0 {
		writeError(w, apperr.Validation("Student id and group id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
		return
	}

	if err := s.store.RemoveStudentFromGroup(r.Context(), in.StudentID, in.GroupID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupTeachingRequest struct {
	TeacherID int64 `json:"teacher_id"`
	GroupID   int64 `json:"group_id"`
	SubjectID int64 `json:"subject_id"`
}

func (s *Server) handleAddTeacherToGroup(w http.ResponseWriter, r *http.Request) {
	var in groupTeachingRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.TeacherID <= 0 || in.GroupID <= 0 || in.SubjectID <= 0 {
		writeError(w, apperr.Validation("Teacher id, group id and subject id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
		return
	}

	exists, err := s.store.GroupExists(r.Context(), in.GroupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeError(w, apperr.NotFound("Group not found"))
		return
	}
	teaches, err := s.store.TeacherTeachesSubject(r.Context(), in.TeacherID, in.SubjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !teaches {
		writeError(w, apperr.Forbidden("Teacher is not teaching this subject"))
		return
	}

	if _, err := s.store.AddTeacherToGroup(r.Context(), in.TeacherID, in.GroupID, in.SubjectID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Teacher added to group")
}

func (s *Server) handleRemoveTeacherFromGroup(w http.ResponseWriter, r *http.Request) {
	var in groupTeachingRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.TeacherID <= 0 || in.GroupID <= 0 || in.SubjectID <= 0 {
		writeError(w, apperr.Validation("Teacher id, group id and subject id are required"))
		return
	}

	if _, ok := s.authorize(w, r, policy.ActionManageGroups, policy.Resource{}); !ok {
		return
	}

	if err := s.store.RemoveTeacherFromGroup(r.Context(), in.TeacherID, in.GroupID, in.SubjectID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
