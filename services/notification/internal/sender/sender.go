package sender

import (
	"context"
	"errors"

	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/domain"
)

// ErrDeviceNotRegistered means the gateway no longer accepts the token.
var ErrDeviceNotRegistered = errors.New("device not registered")

// Sender defines the interface for delivering a push message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *domain.Message) error
}
