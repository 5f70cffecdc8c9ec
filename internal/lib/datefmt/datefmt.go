// Package datefmt форматирует даты для текстов уведомлений и писем
// с названиями месяцев на языке настроенной локали.
package datefmt

import (
	"time"

	"github.com/goodsign/monday"
)

// NotificationLayout формат даты в тексте уведомления: "dia 22 de junho, às 14:00h".
const NotificationLayout = "dia 02 de January, às 15:04h"

// DefaultLocale используется, если в конфиге указана неизвестная локаль.
const DefaultLocale = monday.LocalePtBR

// Formatter форматирует даты в фиксированной локали.
type Formatter struct {
	locale monday.Locale
}

// New создает Formatter. Неизвестная локаль заменяется на DefaultLocale.
func New(locale string) *Formatter {
	l := monday.Locale(locale)
	if !IsSupported(l) {
		l = DefaultLocale
	}
	return &Formatter{locale: l}
}

// IsSupported проверяет, знает ли monday указанную локаль.
func IsSupported(locale monday.Locale) bool {
	for _, l := range monday.ListLocales() {
		if l == locale {
			return true
		}
	}
	return false
}

// Locale возвращает используемую локаль.
func (f *Formatter) Locale() string {
	return string(f.locale)
}

// Notification форматирует t по NotificationLayout.
func (f *Formatter) Notification(t time.Time) string {
	return monday.Format(t, NotificationLayout, f.locale)
}
