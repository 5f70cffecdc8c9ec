package appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation не задан провайдер или дата не в формате ISO-8601.
	ErrValidation = errors.New("validation fails")
	// ErrNotAProvider записываться можно только к провайдерам.
	ErrNotAProvider = errors.New("you can only create appointments with providers")
	// ErrSelfBooking провайдер не может записаться сам к себе.
	ErrSelfBooking = errors.New("you can't create appointments with yourself")
	// ErrPastDate час записи уже начался.
	ErrPastDate = errors.New("past dates are not permitted")
	// ErrSlotUnavailable у провайдера уже есть запись на этот час.
	ErrSlotUnavailable = errors.New("appointment date is not available")
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("appointment not found")
	// ErrAlreadyCanceled запись уже отменена и больше не является активной.
	ErrAlreadyCanceled = fmt.Errorf("appointment already canceled: %w", ErrNotFound)
	// ErrNotOwner отменить запись может только клиент, который ее создал.
	ErrNotOwner = errors.New("you don't have permission to cancel this appointment")
	// ErrCancellationWindowExpired до начала записи осталось меньше двух часов.
	ErrCancellationWindowExpired = errors.New("you can only cancel appointments 2 hours in advance")
	// ErrJobQueueUnavailable запись отменена, но письмо поставить в очередь не удалось.
	ErrJobQueueUnavailable = errors.New("appointment canceled, but the cancellation email could not be scheduled")
)
