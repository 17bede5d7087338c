package ledger

import (
	"context"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/messaging"
	"ledgerchat-backend/internal/repository"
	appErrors "ledgerchat-backend/pkg/errors"
)

// CreateNotification creates a notification. A job link must reference an
// owned job.
func (s *Service) CreateNotification(ctx context.Context, userID string, input CreateNotificationInput) (*domain.Notification, error) {
	notification := domain.NewNotification(userID, input.Message, domain.NotificationType(input.Type))
	if input.JobID != "" {
		if _, err := s.GetJob(ctx, userID, input.JobID); err != nil {
			return nil, err
		}
		notification.JobID = input.JobID
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.NewPersistence("failed to create notification", err)
	}

	s.logger.Info("notification created",
		zap.String("user_id", userID),
		zap.String("notification_id", notification.ID),
	)
	s.publish(ctx, messaging.Event{
		Kind:       messaging.EventNotificationCreated,
		UserID:     userID,
		EntityID:   notification.ID,
		OccurredAt: notification.CreatedAt,
	})
	return notification, nil
}

// ListNotifications returns all of the user's notifications.
func (s *Service) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list notifications", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	notification, err := s.store.GetNotification(ctx, userID, notificationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("notification not found: " + notificationID)
		}
		return nil, appErrors.NewPersistence("failed to load notification", err)
	}

	if notification.Read {
		return notification, nil
	}
	notification.Read = true
	if err := s.store.UpdateNotification(ctx, notification); err != nil {
		return nil, appErrors.NewPersistence("failed to update notification", err)
	}
	return notification, nil
}

// DeleteNotification removes a notification.
func (s *Service) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	if err := s.store.DeleteNotification(ctx, userID, notificationID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound("notification not found: " + notificationID)
		}
		return appErrors.NewPersistence("failed to delete notification", err)
	}
	return nil
}
