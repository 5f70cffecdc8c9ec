// Package timerules содержит чистые функции работы со временем для правил бронирования:
// округление до начала часа, строгое сравнение и вычитание часов.
package timerules

import "time"

// StartOfHour обнуляет минуты, секунды и наносекунды, сохраняя часовой пояс t.
// Считается от момента t со смещением пояса в этот момент, поэтому повторный
// час при переходе с летнего времени не склеивается с первым, а пояса
// со смещением в полчаса округляются по местным часам.
func StartOfHour(t time.Time) time.Time {
	_, offset := t.Zone()
	shift := time.Duration(offset) * time.Second
	return t.Add(shift).Truncate(time.Hour).Add(-shift)
}

// IsBefore строго раньше: равные моменты возвращают false.
func IsBefore(a, b time.Time) bool {
	return a.Before(b)
}

// SubHours возвращает момент на n часов раньше t.
func SubHours(t time.Time, n int) time.Time {
	return t.Add(-time.Duration(n) * time.Hour)
}
