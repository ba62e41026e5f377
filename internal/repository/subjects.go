package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

func (s *Store) collectSubjects(ctx context.Context, query string, args ...any) ([]model.Subject, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()

	subjects := make([]model.Subject, 0)
	for rows.Next() {
		var sub model.Subject
		if err := rows.Scan(&sub.ID, &sub.Name); err != nil {
			return nil, apperr.Store(err)
		}
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return subjects, nil
}

// ListSubjectsByStudent returns subjects taught in any group the student
// belongs to.
func (s *Store) ListSubjectsByStudent(ctx context.Context, studentID int64) ([]model.Subject, error) {
	return s.collectSubjects(ctx, `
		SELECT DISTINCT s.id, s.name
		FROM subjects s
		JOIN groups_on_subjects_on_teachers gst ON gst.subject_id = s.id
		JOIN students_on_groups sg ON sg.group_id = gst.group_id
		WHERE sg.student_id = $1
		ORDER BY s.id
	`, studentID)
}

func (s *Store) ListSubjectsByTeacher(ctx context.Context, teacherID int64) ([]model.Subject, error) {
	return s.collectSubjects(ctx, `
		SELECT DISTINCT s.id, s.name
		FROM subjects s
		JOIN subjects_on_teachers st ON st.subject_id = s.id
		WHERE st.teacher_id = $1
		ORDER BY s.id
	`, teacherID)
}

func (s *Store) ListSubjectsByGroup(ctx context.Context, groupID int64) ([]model.Subject, error) {
	return s.collectSubjects(ctx, `
		SELECT DISTINCT s.id, s.name
		FROM subjects s
		JOIN groups_on_subjects_on_teachers gst ON gst.subject_id = s.id
		WHERE gst.group_id = $1
		ORDER BY s.id
	`, groupID)
}

func (s *Store) CreateSubject(ctx context.Context, name string) (model.Subject, error) {
	sub := model.Subject{Name: name}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subjects (name) VALUES ($1) RETURNING id
	`, name).Scan(&sub.ID)
	if err != nil {
		return model.Subject{}, apperr.Store(err)
	}
	return sub, nil
}

func (s *Store) UpdateSubject(ctx context.Context, id int64, name string) (model.Subject, error) {
	var sub model.Subject
	row := s.pool.QueryRow(ctx, `
		UPDATE subjects SET name = $2 WHERE id = $1 RETURNING id, name
	`, id, name)
	if err := row.Scan(&sub.ID, &sub.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subject{}, apperr.NotFound("subject not found")
		}
		return model.Subject{}, apperr.Store(err)
	}
	return sub, nil
}

// DeleteSubject removes the subject together with its teacher pairings,
// group assignments and grades, so no dangling references survive.
func (s *Store) DeleteSubject(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM grades
			WHERE subject_on_teacher_id IN (
				SELECT id FROM subjects_on_teachers WHERE subject_id = $1
			)
		`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM groups_on_subjects_on_teachers WHERE subject_id = $1
		`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM subjects_on_teachers WHERE subject_id = $1
		`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("subject not found")
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

func (s *Store) SubjectExists(ctx context.Context, id int64) (bool, error) {
	found, err := s.exists(ctx, `SELECT 1 FROM subjects WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}

// AssignTeacherToSubject creates the teacher-subject pairing. A duplicate
// pairing is a conflict.
func (s *Store) AssignTeacherToSubject(ctx context.Context, teacherID, subjectID int64) (model.SubjectOnTeacher, error) {
	pair := model.SubjectOnTeacher{TeacherID: teacherID, SubjectID: subjectID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subjects_on_teachers (teacher_id, subject_id)
		VALUES ($1, $2)
		RETURNING id
	`, teacherID, subjectID).Scan(&pair.ID)
	if err != nil {
		if _, ok := constraintViolated(err); ok {
			return model.SubjectOnTeacher{}, apperr.Conflict("Teacher is already assigned to this subject")
		}
		return model.SubjectOnTeacher{}, apperr.Store(err)
	}
	return pair, nil
}

// UnassignTeacherFromSubject drops the pairing along with the grades and
// group assignments that hang off it.
func (s *Store) UnassignTeacherFromSubject(ctx context.Context, teacherID, subjectID int64) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM grades
			WHERE subject_on_teacher_id IN (
				SELECT id FROM subjects_on_teachers WHERE teacher_id = $1 AND subject_id = $2
			)
		`, teacherID, subjectID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM groups_on_subjects_on_teachers
			WHERE teacher_id = $1 AND subject_id = $2
		`, teacherID, subjectID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			DELETE FROM subjects_on_teachers
			WHERE teacher_id = $1 AND subject_id = $2
		`, teacherID, subjectID)
		return err
	})
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *Store) GetSubjectOnTeacher(ctx context.Context, id int64) (model.SubjectOnTeacher, error) {
	var pair model.SubjectOnTeacher
	row := s.pool.QueryRow(ctx, `
		SELECT id, teacher_id, subject_id
		FROM subjects_on_teachers
		WHERE id = $1
	`, id)
	if err := row.Scan(&pair.ID, &pair.TeacherID, &pair.SubjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SubjectOnTeacher{}, apperr.NotFound("teacher-subject pairing not found")
		}
		return model.SubjectOnTeacher{}, apperr.Store(err)
	}
	return pair, nil
}

// TeacherOwnsPair reports whether the teacher-subject pairing belongs to
// the given teacher. Used by the authorization checks on grade access.
func (s *Store) TeacherOwnsPair(ctx context.Context, pairID, teacherID int64) (bool, error) {
	found, err := s.exists(ctx, `
		SELECT 1 FROM subjects_on_teachers WHERE id = $1 AND teacher_id = $2
	`, pairID, teacherID)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}

func (s *Store) TeacherTeachesSubject(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	found, err := s.exists(ctx, `
		SELECT 1 FROM subjects_on_teachers WHERE teacher_id = $1 AND subject_id = $2
	`, teacherID, subjectID)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}
