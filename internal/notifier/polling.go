package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Reply is what a command produces: text, a photo, or both.
type Reply struct {
	Text  string
	Photo []byte
}

// CommandHandler is called when a user command is received. It replies
// itself and returns the delivery error, if any.
type CommandHandler func(ctx context.Context, command string) error

// pollRetryDelay is the pause after any failed getUpdates round.
const pollRetryDelay = 5 * time.Second

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	var transport http.RoundTripper
	if t.Client != nil {
		transport = t.Client.Transport
	}
	client := &http.Client{Timeout: 35 * time.Second, Transport: transport}

	for {
		updates, err := t.getUpdates(ctx, client, offset)
		if ctx.Err() != nil {
			log.Println("[INFO] Telegram polling stopped")
			return
		}
		if err != nil {
			log.Printf("[WARN] polling failed: %v, retrying in %v", err, pollRetryDelay)
			select {
			case <-ctx.Done():
				log.Println("[INFO] Telegram polling stopped")
				return
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			log.Printf("[INFO] received command: %s", text)
			if err := handler(ctx, text); err != nil {
				log.Printf("[ERROR] reply to %s: %v", text, err)
			}
		}
	}
}

// getUpdates runs one long-poll round. Any non-200 status or an "ok": false
// body is an error.
func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool             `json:"ok"`
		Description string           `json:"description"`
		Result      []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}
	return result.Result, nil
}

// Deliver sends a command reply: a photo with caption when there is one,
// otherwise the text.
func (t *TelegramNotifier) Deliver(ctx context.Context, reply Reply) error {
	switch {
	case len(reply.Photo) > 0:
		return t.SendPhoto(ctx, reply.Photo, reply.Text)
	case reply.Text != "":
		return t.Send(ctx, reply.Text)
	}
	return nil
}
