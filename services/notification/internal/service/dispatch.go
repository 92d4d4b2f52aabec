package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/repository"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender"
)

// Dispatcher resolves a notice's recipient to a device token and hands the
// message to the sender.
type Dispatcher struct {
	tokens repository.TokenStore
	sender sender.Sender
	logger *slog.Logger
}

func NewDispatcher(tokens repository.TokenStore, s sender.Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{tokens: tokens, sender: s, logger: logger}
}

// Dispatch delivers n. Recipients without a token and dead tokens are not
// errors; token lookup and gateway failures are returned so the event is
// retried.
func (d *Dispatcher) Dispatch(ctx context.Context, n domain.Notice) error {
	log := d.logger.With(
		slog.String("kind", n.Kind),
		slog.String("recipient_id", n.RecipientID),
	)

	if n.RecipientID == "" {
		log.WarnContext(ctx, "notice without recipient, skipping")
		pushNotificationsSent.WithLabelValues(n.Kind, resultNoToken).Inc()
		return nil
	}

	token, err := d.tokens.Get(ctx, n.RecipientID)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.InfoContext(ctx, "recipient has no device token, skipping")
		pushNotificationsSent.WithLabelValues(n.Kind, resultNoToken).Inc()
		return nil
	}
	if err != nil {
		pushNotificationsSent.WithLabelValues(n.Kind, resultError).Inc()
		return fmt.Errorf("look up device token: %w", err)
	}

	err = d.sender.Send(ctx, n.Message(token))
	switch {
	case err == nil:
		pushNotificationsSent.WithLabelValues(n.Kind, resultSent).Inc()
		log.InfoContext(ctx, "push notification sent", slog.String("sender", d.sender.Name()))
		return nil
	case errors.Is(err, sender.ErrDeviceNotRegistered):
		pushNotificationsSent.WithLabelValues(n.Kind, resultNotRegistered).Inc()
		log.InfoContext(ctx, "device token no longer registered, removing it")
		if err := d.tokens.Delete(ctx, n.RecipientID, token); err != nil {
			log.WarnContext(ctx, "failed to remove stale device token", slog.String("error", err.Error()))
		}
		return nil
	default:
		pushNotificationsSent.WithLabelValues(n.Kind, resultError).Inc()
		return fmt.Errorf("send %s notification via %s: %w", n.Kind, d.sender.Name(), err)
	}
}
