package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

func notificationsKey(recipientID int) string {
	return "notifications:" + strconv.Itoa(recipientID)
}

// Append добавляет уведомление в начало журнала получателя.
func (c *Cache) Append(ctx context.Context, n *models.Notification) error {
	const op = "cache.Append"
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.LPush(ctx, notificationsKey(n.User), data).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListByRecipient возвращает до limit последних уведомлений, новые первыми.
func (c *Cache) ListByRecipient(ctx context.Context, recipientID int, limit int) ([]models.Notification, error) {
	const op = "cache.ListByRecipient"
	if limit <= 0 {
		return []models.Notification{}, nil
	}
	raw, err := c.Db.LRange(ctx, notificationsKey(recipientID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, n)
	}
	return res, nil
}
