package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// CreateAppointment сохраняет запись и заполняет ID и даты.
// Активная запись на тот же час у провайдера возвращает ErrSlotTaken.
func (s *Storage) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	const op = "storage.CreateAppointment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO appointments (date, slot, user_id, provider_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query, a.Date, a.Slot, a.UserID, a.ProviderID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrSlotTaken)
		case codeCheckViolation:
			return fmt.Errorf("%s: %w", op, ErrConstraint)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAppointment возвращает запись вместе с провайдером и клиентом.
func (s *Storage) GetAppointment(ctx context.Context, id int) (*models.Appointment, error) {
	const op = "storage.GetAppointment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT a.id, a.user_id, a.provider_id, a.date, a.slot, a.canceled_at,
				a.created_at, a.updated_at,
				p.name, p.email, c.name, c.email
			  FROM appointments a
			  JOIN users p ON p.id = a.provider_id
			  JOIN users c ON c.id = a.user_id
			  WHERE a.id = $1`

	var (
		a          models.Appointment
		canceledAt sql.NullTime
		provider   models.User
		client     models.User
	)
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.UserID, &a.ProviderID, &a.Date, &a.Slot,
		&canceledAt, &a.CreatedAt, &a.UpdatedAt,
		&provider.Name, &provider.Email, &client.Name, &client.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if canceledAt.Valid {
		t := canceledAt.Time
		a.CanceledAt = &t
	}
	provider.ID = a.ProviderID
	provider.Provider = true
	client.ID = a.UserID
	a.Provider = &provider
	a.User = &client
	return &a, nil
}

// CancelAppointment помечает активную запись отмененной.
// ErrNotFound, если записи нет или она уже отменена.
func (s *Storage) CancelAppointment(ctx context.Context, id int, at time.Time) error {
	const op = "storage.CancelAppointment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE appointments SET canceled_at = $1, updated_at = $1
			  WHERE id = $2 AND canceled_at IS NULL`
	res, err := s.DB.ExecContext(ctx, query, at, id)
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

// ListActiveAppointments возвращает активные записи клиента по возрастанию даты
// вместе с провайдером и его аватаром.
func (s *Storage) ListActiveAppointments(ctx context.Context, userID, limit, offset int) ([]models.Appointment, error) {
	const op = "storage.ListActiveAppointments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT a.id, a.user_id, a.provider_id, a.date, a.slot, a.created_at, a.updated_at,
				p.name, f.id, f.name, f.path
			  FROM appointments a
			  JOIN users p ON p.id = a.provider_id
			  LEFT JOIN files f ON f.id = p.avatar_id
			  WHERE a.user_id = $1 AND a.canceled_at IS NULL
			  ORDER BY a.date, a.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Appointment, 0, limit)
	for rows.Next() {
		var (
			a        models.Appointment
			provider models.User
			fileID   sql.NullInt64
			fileName sql.NullString
			filePath sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProviderID, &a.Date, &a.Slot, &a.CreatedAt, &a.UpdatedAt,
			&provider.Name, &fileID, &fileName, &filePath); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		provider.ID = a.ProviderID
		provider.Provider = true
		if fileID.Valid {
			provider.Avatar = &models.File{ID: int(fileID.Int64), Name: fileName.String, Path: filePath.String}
		}
		a.Provider = &provider
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// HasActiveAppointmentAt есть ли у провайдера активная запись ровно на slot.
func (s *Storage) HasActiveAppointmentAt(ctx context.Context, providerID int, slot time.Time) (bool, error) {
	const op = "storage.HasActiveAppointmentAt"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE provider_id = $1 AND slot = $2 AND canceled_at IS NULL
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, providerID, slot).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
