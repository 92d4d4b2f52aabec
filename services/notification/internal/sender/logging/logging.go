package logging

import (
	"context"
	"log/slog"

	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/domain"
)

// Sender logs messages instead of delivering them. It is used in
// development, where no push gateway is reachable.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Name() string {
	return "log"
}

func (s *Sender) Send(ctx context.Context, msg *domain.Message) error {
	s.logger.InfoContext(ctx, "push message (not delivered)",
		slog.String("to", msg.To),
		slog.String("title", msg.Title),
		slog.String("body", msg.Body),
		slog.String("type", msg.Data["type"]),
	)
	return nil
}
