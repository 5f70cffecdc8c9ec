package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.provider, u.avatar_id,
	u.created_at, u.updated_at, f.id, f.name, f.path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u        models.User
		avatarID sql.NullInt64
		fileID   sql.NullInt64
		fileName sql.NullString
		filePath sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Provider, &avatarID,
		&u.CreatedAt, &u.UpdatedAt, &fileID, &fileName, &filePath); err != nil {
		return nil, err
	}
	if avatarID.Valid {
		id := int(avatarID.Int64)
		u.AvatarID = &id
	}
	if fileID.Valid {
		u.Avatar = &models.File{ID: int(fileID.Int64), Name: fileName.String, Path: filePath.String}
	}
	return &u, nil
}

// CreateUser сохраняет пользователя и заполняет ID и даты.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (name, email, password_hash, provider)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Provider).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя с аватаром по ID.
func (s *Storage) GetUser(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `
			  FROM users u LEFT JOIN files f ON f.id = u.avatar_id
			  WHERE u.id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `
			  FROM users u LEFT JOIN files f ON f.id = u.avatar_id
			  WHERE u.email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListProviders возвращает всех провайдеров с аватарами, упорядоченных по имени.
func (s *Storage) ListProviders(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListProviders"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `
			  FROM users u LEFT JOIN files f ON f.id = u.avatar_id
			  WHERE u.provider
			  ORDER BY u.name, u.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SetUserAvatar привязывает файл к пользователю.
func (s *Storage) SetUserAvatar(ctx context.Context, userID, fileID int) error {
	const op = "storage.SetUserAvatar"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users SET avatar_id = $1, updated_at = NOW() WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, fileID, userID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
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
