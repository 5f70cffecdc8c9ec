// Package availability проверяет, свободен ли час у провайдера.
package availability

import (
	"context"
	"fmt"
	"time"
)

// Repository источник активных записей.
type Repository interface {
	HasActiveAppointmentAt(ctx context.Context, providerID int, slot time.Time) (bool, error)
}

// Checker отвечает на вопрос о занятости слота.
type Checker struct {
	repo Repository
}

// New создает Checker.
func New(repo Repository) *Checker {
	return &Checker{repo: repo}
}

// IsSlotTaken true, если у провайдера есть неотмененная запись ровно на slot.
// slot сравнивается с сохраненным началом часа, поэтому 14:00 и 14:30 конфликтуют.
func (c *Checker) IsSlotTaken(ctx context.Context, providerID int, slot time.Time) (bool, error) {
	const op = "availability.IsSlotTaken"
	taken, err := c.repo.HasActiveAppointmentAt(ctx, providerID, slot)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return taken, nil
}
