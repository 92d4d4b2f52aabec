// Package push delivers messages to an Expo-compatible push gateway.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender"
)

// Config is embedded with envPrefix:"PUSH_".
type Config struct {
	URL         string `env:"GATEWAY_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
	AccessToken string `env:"ACCESS_TOKEN"`
}

const maxResponseBytes = 64 << 10

// Poster is satisfied by *httpclient.CircuitBreakerClient.
type Poster interface {
	PostJSON(ctx context.Context, url string, body []byte, header http.Header) (*http.Response, error)
}

// Sender posts one message per request and reads the returned push ticket.
type Sender struct {
	client Poster
	cfg    Config
	logger *slog.Logger
}

func NewSender(client Poster, cfg Config, logger *slog.Logger) *Sender {
	return &Sender{client: client, cfg: cfg, logger: logger}
}

func (s *Sender) Name() string {
	return "push"
}

// Send returns sender.ErrDeviceNotRegistered when the ticket reports that
// the token is dead.
func (s *Sender) Send(ctx context.Context, msg *domain.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	header := http.Header{}
	if s.cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	}

	resp, err := s.client.PostJSON(ctx, s.cfg.URL, body, header)
	if err != nil {
		return fmt.Errorf("post to push gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read push gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if detail := gjson.GetBytes(raw, "errors.0.message"); detail.Exists() {
			return fmt.Errorf("push gateway answered %d: %s", resp.StatusCode, detail.String())
		}
		return fmt.Errorf("push gateway answered %d", resp.StatusCode)
	}

	return s.readTicket(ctx, raw)
}

func (s *Sender) readTicket(ctx context.Context, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("push gateway returned malformed JSON")
	}

	ticket := gjson.GetBytes(raw, "data")
	// A batch request answers with an array; we only ever send one message.
	if ticket.IsArray() {
		ticket = ticket.Get("0")
	}

	switch status := ticket.Get("status").String(); status {
	case "ok":
		s.logger.DebugContext(ctx, "push ticket issued", slog.String("ticket_id", ticket.Get("id").String()))
		return nil
	case "error":
		reason := ticket.Get("details.error").String()
		message := ticket.Get("message").String()
		if reason == "DeviceNotRegistered" {
			return fmt.Errorf("%w: %s", sender.ErrDeviceNotRegistered, message)
		}
		return fmt.Errorf("push ticket error %s: %s", reason, message)
	default:
		return fmt.Errorf("push gateway returned unknown ticket status %q", status)
	}
}
