package models

import (
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/timerules"
)

const (
	// CancellationWindowHours за сколько часов до начала запись еще можно отменить.
	CancellationWindowHours = 2
	// AppointmentsPageSize размер страницы списка записей.
	AppointmentsPageSize = 20
)

// Appointment запись клиента к провайдеру.
// Date хранит исходное время из запроса, Slot начало часа, по которому ищутся конфликты.
// Past и Cancelable вычисляются на момент чтения и в базе не хранятся.
type Appointment struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	ProviderID int        `json:"provider_id"`
	Date       time.Time  `json:"date"`
	Slot       time.Time  `json:"-"`
	CanceledAt *time.Time `json:"canceled_at"`
	Past       bool       `json:"past"`
	Cancelable bool       `json:"cancelable"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Provider   *User      `json:"provider,omitempty"`
	User       *User      `json:"user,omitempty"`
}

// IsPast запись уже началась.
func (a *Appointment) IsPast(now time.Time) bool {
	return timerules.IsBefore(a.Date, now)
}

// IsCancelable запись активна и до ее начала больше CancellationWindowHours часов.
func (a *Appointment) IsCancelable(now time.Time) bool {
	return a.CanceledAt == nil &&
		timerules.IsBefore(now, timerules.SubHours(a.Date, CancellationWindowHours))
}

// WithDerived пересчитывает Past и Cancelable относительно now.
func (a *Appointment) WithDerived(now time.Time) *Appointment {
	a.Past = a.IsPast(now)
	a.Cancelable = a.IsCancelable(now)
	return a
}

// ProviderSummary провайдер в списке записей клиента.
type ProviderSummary struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar *File  `json:"avatar"`
}

// AppointmentSummary элемент списка записей клиента.
type AppointmentSummary struct {
	ID         int             `json:"id"`
	Date       time.Time       `json:"date"`
	Past       bool            `json:"past"`
	Cancelable bool            `json:"cancelable"`
	Provider   ProviderSummary `json:"provider"`
}

// CreateAppointmentRequest тело запроса на создание записи.
// Date приходит строкой в формате ISO-8601 и парсится вручную.
type CreateAppointmentRequest struct {
	ProviderID int    `json:"provider_id" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
}
