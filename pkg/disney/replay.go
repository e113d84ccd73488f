package disney

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"dinescout/pkg/logger"
)

// challengeStatus is the bot-detection status code on direct availability
// calls. It is recovered locally by resetting through a full UI search.
const challengeStatus = 428

// uiSearcher is the slice of the driver the replay client depends on
type uiSearcher interface {
	Search(ctx context.Context, partySize int, date string) (json.RawMessage, error)
	CapturedHeaders() map[string]string
	ResetSearchForm(ctx context.Context) error
}

// sessionFetcher issues a request with a given header set through the
// existing browser session.
type sessionFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResult, error)
}

// ReplayClient re-triggers availability searches by replaying the headers the
// reservation app used during the initial UI-driven search, avoiding the full
// automation flow on every poll.
type ReplayClient struct {
	ui      uiSearcher
	fetcher sessionFetcher
}

// NewReplayClient builds a replay client on top of a driver. The driver
// provides both the fallback UI search and the in-session fetch capability.
func NewReplayClient(ui uiSearcher, fetcher sessionFetcher) *ReplayClient {
	return &ReplayClient{ui: ui, fetcher: fetcher}
}

// Replay fetches availability through the captured-header fast path. With no
// captured headers yet it falls back to a full UI search. A challenge status
// triggers a reset followed by one full search, which also refreshes the
// captured headers for subsequent calls. Transient failures yield a nil
// payload with a nil error.
func (r *ReplayClient) Replay(ctx context.Context, partySize int, date string) (json.RawMessage, error) {
	captured := r.ui.CapturedHeaders()
	if captured == nil {
		logger.Warn("No captured headers from initial search, falling back to full search")
		return r.ui.Search(ctx, partySize, date)
	}

	headers := make(map[string]string, len(headerWhitelist))
	for _, key := range headerWhitelist {
		if value, ok := captured[key]; ok {
			headers[key] = value
		}
	}

	logger.Info("Fetching availability via in-session API call")
	result, err := r.fetcher.Fetch(ctx, availabilityAPIPath(partySize, date), headers)
	if err != nil {
		logger.Warn("In-session fetch failed", zap.Error(err))
		return nil, nil
	}

	if result.Status == challengeStatus {
		logger.Info("Challenge status received, resetting via full UI search",
			zap.Int("status", result.Status))
		if err := r.ui.ResetSearchForm(ctx); err != nil {
			logger.Warn("Failed to reset search form", zap.Error(err))
			return nil, nil
		}
		return r.ui.Search(ctx, partySize, date)
	}

	if result.Status != 200 {
		if result.Message != "" {
			logger.Warn("Availability API call failed", zap.String("message", result.Message))
		} else {
			logger.Warn("Availability API returned non-200 status", zap.Int("status", result.Status))
		}
		return nil, nil
	}

	return json.RawMessage(result.Body), nil
}
