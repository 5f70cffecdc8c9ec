package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// CreateFile сохраняет метаданные загруженного файла и заполняет ID.
func (s *Storage) CreateFile(ctx context.Context, f *models.File) error {
	const op = "storage.CreateFile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO files (name, path) VALUES ($1, $2) RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, f.Name, f.Path).Scan(&f.ID); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return fmt.Errorf("%s: path %s: %w", op, f.Path, ErrConstraint)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteFile удаляет метаданные файла. Пользователи, ссылавшиеся на него,
// остаются без аватара (ON DELETE SET NULL).
func (s *Storage) DeleteFile(ctx context.Context, id int) error {
	const op = "storage.DeleteFile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
