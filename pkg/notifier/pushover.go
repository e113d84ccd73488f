package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dinescout/pkg/config"
	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// PushoverNotifier sends one push per available time slot. Pushover asks
// clients to keep concurrent requests low, so sends are paced by a limiter
// instead of fired in parallel.
type PushoverNotifier struct {
	cfg        *config.PushoverConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
}

type pushoverMessage struct {
	User     string `json:"user"`
	Token    string `json:"token"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	URL      string `json:"url,omitempty"`
	URLTitle string `json:"url_title,omitempty"`
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors,omitempty"`
}

func NewPushoverNotifier(cfg *config.PushoverConfig) *PushoverNotifier {
	return &PushoverNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(600*time.Millisecond), 1),
		endpoint:   pushoverEndpoint,
	}
}

func (p *PushoverNotifier) Name() string {
	return "pushover"
}

func (p *PushoverNotifier) Notify(ctx context.Context, match Match) error {
	if !p.cfg.Configured() {
		logger.Warn("No pushover credentials provided, skipping push notification")
		return nil
	}

	resort := disney.ConfigFor(match.Resort)
	restaurant := match.Availability.Restaurant

	for _, cleanedTime := range match.Availability.CleanedTimes {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		msg := pushoverMessage{
			User:  p.cfg.UserKey,
			Token: p.cfg.APIToken,
			Title: fmt.Sprintf("Found openings for %s on %s @ %s",
				restaurant.Name, match.Date, cleanedTime.Time),
			Message: fmt.Sprintf("Found openings for %d people on %s for %s for the following time(s): %s",
				match.PartySize, match.Date, restaurant.Name, cleanedTime.Time),
		}
		if restaurant.URLFriendlyID != "" {
			msg.URL = fmt.Sprintf("%s/dine-res/restaurant/%s/", resort.BaseURL, restaurant.URLFriendlyID)
			msg.URLTitle = "Reserve"
		}

		if err := p.send(ctx, msg); err != nil {
			return err
		}
	}
	logger.Info("Pushover notifications sent")
	return nil
}

func (p *PushoverNotifier) send(ctx context.Context, msg pushoverMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send pushover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: HTTP %d", resp.StatusCode)
	}

	var decoded pushoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode pushover response: %w", err)
	}
	if decoded.Status != 1 {
		return fmt.Errorf("pushover error: %s", strings.Join(decoded.Errors, ", "))
	}
	return nil
}
