package models

import "time"

// NotificationsLimit сколько последних уведомлений отдается провайдеру.
const NotificationsLimit = 20

// Notification запись в журнале уведомлений получателя. Журнал только дополняется.
type Notification struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	User      int       `json:"user"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
