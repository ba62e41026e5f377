package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

func (s *Store) collectGroups(ctx context.Context, query string, args ...any) ([]model.Group, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()

	groups := make([]model.Group, 0)
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, apperr.Store(err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return groups, nil
}

func (s *Store) ListGroupsByStudent(ctx context.Context, studentID int64) ([]model.Group, error) {
	return s.collectGroups(ctx, `
		SELECT DISTINCT g.id, g.name
		FROM groups g
		JOIN students_on_groups sg ON sg.group_id = g.id
		WHERE sg.student_id = $1
		ORDER BY g.id
	`, studentID)
}

func (s *Store) ListGroupsByTeacher(ctx context.Context, teacherID int64) ([]model.Group, error) {
	return s.collectGroups(ctx, `
		SELECT DISTINCT g.id, g.name
		FROM groups g
		JOIN groups_on_subjects_on_teachers gst ON gst.group_id = g.id
		WHERE gst.teacher_id = $1
		ORDER BY g.id
	`, teacherID)
}

func (s *Store) CreateGroup(ctx context.Context, name string) (model.Group, error) {
	group := model.Group{Name: name}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO groups (name) VALUES ($1) RETURNING id
	`, name).Scan(&group.ID)
	if err != nil {
		return model.Group{}, apperr.Store(err)
	}
	return group, nil
}

// DeleteGroup removes the group and its membership rows in one
// transaction.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM students_on_groups WHERE group_id = $1
		`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM groups_on_subjects_on_teachers WHERE group_id = $1
		`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("group not found")
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnknown {
			return err
		}
		return apperr.Store(err)
	}
	return nil
}

func (s *Store) AddStudentToGroup(ctx context.Context, studentID, groupID int64) (model.StudentOnGroup, error) {
	member := model.StudentOnGroup{StudentID: studentID, GroupID: groupID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO students_on_groups (student_id, group_id)
		VALUES ($1, $2)
		RETURNING id
	`, studentID, groupID).Scan(&member.ID)
	if err != nil {
		if _, ok := constraintViolated(err); ok {
			return model.StudentOnGroup{}, apperr.Conflict("Student is already in this group")
		}
		return model.StudentOnGroup{}, apperr.Store(err)
	}
	return member, nil
}

func (s *Store) RemoveStudentFromGroup(ctx context.Context, studentID, groupID int64) error {
	if _, err := s.pool.Exec(ctx, `
		DELETE FROM students_on_groups WHERE student_id = $1 AND group_id = $2
	`, studentID, groupID); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *Store) AddTeacherToGroup(ctx context.Context, teacherID, groupID, subjectID int64) (model.GroupOnSubjectOnTeacher, error) {
	assignment := model.GroupOnSubjectOnTeacher{GroupID: groupID, SubjectID: subjectID, TeacherID: teacherID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO groups_on_subjects_on_teachers (group_id, subject_id, teacher_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, groupID, subjectID, teacherID).Scan(&assignment.ID)
	if err != nil {
		if _, ok := constraintViolated(err); ok {
			return model.GroupOnSubjectOnTeacher{}, apperr.Conflict("Teacher is already assigned to this group")
		}
		return model.GroupOnSubjectOnTeacher{}, apperr.Store(err)
	}
	return assignment, nil
}

func (s *Store) RemoveTeacherFromGroup(ctx context.Context, teacherID, groupID, subjectID int64) error {
	if _, err := s.pool.Exec(ctx, `
		DELETE FROM groups_on_subjects_on_teachers
		WHERE teacher_id = $1 AND group_id = $2 AND subject_id = $3
	`, teacherID, groupID, subjectID); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *Store) StudentInGroup(ctx context.Context, studentID, groupID int64) (bool, error) {
	found, err := s.exists(ctx, `
		SELECT 1 FROM students_on_groups WHERE student_id = $1 AND group_id = $2
	`, studentID, groupID)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}

func (s *Store) GroupExists(ctx context.Context, id int64) (bool, error) {
	found, err := s.exists(ctx, `SELECT 1 FROM groups WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}
