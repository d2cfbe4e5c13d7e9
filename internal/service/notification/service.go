package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/email"
	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/pkg/messaging"
)

// TopicNotifications is the broker topic in-app notifications fan out on.
const TopicNotifications = "notifications"

// Notifier delivers a user-visible message. Fire-and-forget from the
// caller's perspective; the scheduling core never consumes a result
// beyond logging a delivery error.
type Notifier interface {
	Notify(ctx context.Context, notification *model.Notification) error
}

type Service struct {
	broker   messaging.Broker
	emailSvc email.Sender
}

func NewService(broker messaging.Broker, emailSvc email.Sender) *Service {
	return &Service{
		broker:   broker,
		emailSvc: emailSvc,
	}
}

var _ Notifier = (*Service)(nil)

func (s *Service) Notify(ctx context.Context, notification *model.Notification) error {
	if err := s.validate(notification); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()

	switch notification.Channel {
	case model.NotificationChannelInApp:
		if err := s.broker.Publish(ctx, TopicNotifications, notification); err != nil {
			return fmt.Errorf("failed to publish notification: %w", err)
		}
	case model.NotificationChannelEmail:
		if err := s.emailSvc.Send(ctx, notification.Recipient, notification.Title, notification.Message); err != nil {
			return fmt.Errorf("failed to email notification: %w", err)
		}
	default:
		return fmt.Errorf("unsupported channel: %s", notification.Channel)
	}

	return nil
}

func (s *Service) validate(notification *model.Notification) error {
	if notification.Title == "" {
		return fmt.Errorf("title is required")
	}
	if notification.Message == "" {
		return fmt.Errorf("message is required")
	}
	if notification.Channel == "" {
		return fmt.Errorf("channel is required")
	}
	if notification.Channel == model.NotificationChannelEmail && notification.Recipient == "" {
		return fmt.Errorf("recipient is required for email")
	}
	return nil
}
