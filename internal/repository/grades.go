package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

func (s *Store) collectGrades(ctx context.Context, query string, args ...any) ([]model.Grade, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()

	grades := make([]model.Grade, 0)
	for rows.Next() {
		var g model.Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.SubjectOnTeacherID, &g.Value); err != nil {
			return nil, apperr.Store(err)
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return grades, nil
}

func (s *Store) ListGradesByStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	return s.collectGrades(ctx, `
		SELECT id, student_id, subject_on_teacher_id, value
		FROM grades
		WHERE student_id = $1
		ORDER BY id
	`, studentID)
}

func (s *Store) ListGradesByStudentAndPair(ctx context.Context, studentID, pairID int64) ([]model.Grade, error) {
	return s.collectGrades(ctx, `
		SELECT id, student_id, subject_on_teacher_id, value
		FROM grades
		WHERE student_id = $1 AND subject_on_teacher_id = $2
		ORDER BY id
	`, studentID, pairID)
}

func (s *Store) GetGrade(ctx context.Context, id int64) (model.Grade, error) {
	var g model.Grade
	row := s.pool.QueryRow(ctx, `
		SELECT id, student_id, subject_on_teacher_id, value
		FROM grades
		WHERE id = $1
	`, id)
	if err := row.Scan(&g.ID, &g.StudentID, &g.SubjectOnTeacherID, &g.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Grade{}, apperr.NotFound("grade not found")
		}
		return model.Grade{}, apperr.Store(err)
	}
	return g, nil
}

func (s *Store) CreateGrade(ctx context.Context, grade model.Grade) (model.Grade, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO grades (student_id, subject_on_teacher_id, value)
		VALUES ($1, $2, $3)
		RETURNING id
	`, grade.StudentID, grade.SubjectOnTeacherID, grade.Value).Scan(&grade.ID)
	if err != nil {
		return model.Grade{}, apperr.Store(err)
	}
	return grade, nil
}

func (s *Store) UpdateGrade(ctx context.Context, id int64, value int) (model.Grade, error) {
	var g model.Grade
	row := s.pool.QueryRow(ctx, `
		UPDATE grades
		SET value = $2
		WHERE id = $1
		RETURNING id, student_id, subject_on_teacher_id, value
	`, id, value)
	if err := row.Scan(&g.ID, &g.StudentID, &g.SubjectOnTeacherID, &g.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Grade{}, apperr.NotFound("grade not found")
		}
		return model.Grade{}, apperr.Store(err)
	}
	return g, nil
}

func (s *Store) DeleteGrade(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return apperr.Store(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("grade not found")
	}
	return nil
}
