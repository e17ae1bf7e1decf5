package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries one cross-venue discrepancy.
type Notification struct {
	ObservedAt    time.Time
	Product       string
	AnchorVenue   string
	CrossVenue    string
	Method        string
	AnchorPrice   decimal.Decimal
	CrossPrice    decimal.Decimal
	DiffPct       decimal.Decimal
	ThresholdPct  decimal.Decimal
	Level         string
	Channels      []string
	AdditionalMsg string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls sendMessage with the rendered text.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Str("product", note.Product).
		Str("level", note.Level).
		Str("diff_pct", note.DiffPct.StringFixed(4)).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("discrepancy alert sent")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("[%s Anchor Discrepancy: %s]\n", note.Product, strings.ToUpper(note.Level)))
	builder.WriteString(fmt.Sprintf("Observed: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Anchor: %s (%s, %s)\n", note.AnchorPrice.StringFixed(2), note.AnchorVenue, note.Method))
	builder.WriteString(fmt.Sprintf("Cross: %s (%s)\n", note.CrossPrice.StringFixed(2), note.CrossVenue))
	builder.WriteString(fmt.Sprintf("Difference: %s%% (threshold %s%%)\n", note.DiffPct.StringFixed(4), note.ThresholdPct.StringFixed(2)))
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
