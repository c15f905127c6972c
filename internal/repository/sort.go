package repository

import (
	"sort"

	"ham-backend/internal/domain"
)

func sortMessagesNewestFirst(messages []domain.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
}

func sortNotificationsNewestFirst(notifications []domain.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
