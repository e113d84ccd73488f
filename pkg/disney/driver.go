package disney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"dinescout/pkg/logger"
)

const (
	availabilityPathFragment = "/dine-res/api/availability/"

	challengeOverlaySelector = "#sec-overlay"

	partyHeadingSelector = ".collapsible-panel.party-size .cta-heading"
	dateHeadingSelector  = ".collapsible-panel.date .cta-heading"
	timeHeadingSelector  = ".collapsible-panel.time .cta-heading"
	nextMonthSelector    = `.collapsible-panel.date button[name="Next"][aria-label="Next Month"]`
	dateDoneSelector     = "#btnCancel"
	allDaySelector       = `button[id="unique_id_time_All Day"]`
	timeSearchSelector   = "wdpr-button#timeSearchButton"
	locationDoneSelector = "button#btnLocationDone"

	challengeWait  = 60 * time.Second
	responseWait   = 30 * time.Second
	panelWait      = 15 * time.Second
	elementWait    = 5 * time.Second
	calendarWait   = 3 * time.Second
	maxMonthClicks = 12
	panelSettle    = time.Second
	calendarSettle = 1500 * time.Millisecond
)

// headerWhitelist is the fixed set of request headers replayed on direct
// availability calls.
var headerWhitelist = []string{
	"authorization",
	"x-correlation-id",
	"x-conversation-id",
	"x-function-name",
	"x-disney-internal-dine-vas-365",
	"x-disney-internal-dine-vas-eks",
	"accept",
}

// Driver runs the availability search by interacting with the reservation
// app's UI and intercepting the network response it triggers. It is the only
// component that performs real UI interaction. While browsing it records the
// most recent availability request's headers for the replay fast path.
type Driver struct {
	session *Session

	mu              sync.Mutex
	listening       bool
	capturedHeaders map[string]string
	pendingID       network.RequestID
	pendingStatus   int64
	responses       chan capturedResponse
	armed           bool
}

type capturedResponse struct {
	requestID network.RequestID
	status    int64
}

// NewDriver creates a driver bound to a session. The session must be ensured
// before the first Search call.
func NewDriver(session *Session) *Driver {
	return &Driver{
		session:   session,
		responses: make(chan capturedResponse, 1),
	}
}

// CapturedHeaders returns the whitelisted headers recorded from the most
// recent availability request, or nil when none were seen yet. The captured
// set goes stale whenever the session is challenged or recreated; a full
// Search refreshes it.
func (d *Driver) CapturedHeaders() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capturedHeaders == nil {
		return nil
	}
	headers := make(map[string]string, len(d.capturedHeaders))
	for k, v := range d.capturedHeaders {
		headers[k] = v
	}
	return headers
}

// ensureListeners installs the network event listener once per session
func (d *Driver) ensureListeners() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listening {
		return nil
	}
	page := d.session.Page()
	if page == nil {
		return errors.New("session not ready")
	}

	if err := chromedp.Run(page, network.Enable()); err != nil {
		return fmt.Errorf("failed to enable network events: %w", err)
	}

	chromedp.ListenTarget(page, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventRequestWillBeSent:
			if strings.Contains(ev.Request.URL, availabilityPathFragment) {
				d.recordHeaders(ev.Request.Headers)
			}
		case *network.EventResponseReceived:
			if strings.Contains(ev.Response.URL, availabilityPathFragment) {
				d.mu.Lock()
				d.pendingID = ev.RequestID
				d.pendingStatus = ev.Response.Status
				d.mu.Unlock()
			}
		case *network.EventLoadingFinished:
			d.mu.Lock()
			matched := d.armed && ev.RequestID == d.pendingID && d.pendingID != ""
			status := d.pendingStatus
			if matched {
				d.armed = false
			}
			d.mu.Unlock()
			if matched {
				select {
				case d.responses <- capturedResponse{requestID: ev.RequestID, status: status}:
				default:
				}
			}
		}
	})
	d.listening = true
	return nil
}

func (d *Driver) recordHeaders(raw network.Headers) {
	headers := make(map[string]string)
	for key, value := range raw {
		if str, ok := value.(string); ok {
			headers[strings.ToLower(key)] = str
		}
	}
	d.mu.Lock()
	d.capturedHeaders = headers
	d.mu.Unlock()
	logger.Debug("Captured availability request headers", zap.Int("count", len(headers)))
}

// armResponseCapture discards any stale response and marks the next
// availability response as the one to deliver.
func (d *Driver) armResponseCapture() {
	d.mu.Lock()
	d.pendingID = ""
	d.pendingStatus = 0
	d.armed = true
	d.mu.Unlock()
	select {
	case <-d.responses:
	default:
	}
}

// Search drives the search UI end to end for the given party size and date
// and returns the intercepted availability payload. A nil payload with a nil
// error marks a transient failure (timeout, non-200, flaky UI step); only an
// unreachable date is a hard error.
func (d *Driver) Search(ctx context.Context, partySize int, date string) (json.RawMessage, error) {
	page := d.session.Page()
	if page == nil {
		return nil, errors.New("session not ready")
	}
	if err := d.ensureListeners(); err != nil {
		return nil, err
	}

	// A blocking challenge overlay resolves on the site's schedule, so this
	// is the one generously bounded wait in the flow.
	if isVisible(page, challengeOverlaySelector) {
		logger.Info("Challenge overlay detected, waiting for it to clear")
		if err := waitHidden(page, challengeOverlaySelector, challengeWait); err != nil {
			logger.Warn("Challenge overlay did not clear", zap.Error(err))
			return nil, nil
		}
	}

	if err := waitVisible(page, partyHeadingSelector, panelWait); err != nil {
		logger.Warn("Search form did not appear", zap.Error(err))
		return nil, nil
	}

	d.armResponseCapture()

	// 1. Party size
	logger.Info("Setting party size", zap.Int("partySize", partySize))
	if err := d.expandPanel(page, partyHeadingSelector); err != nil {
		logger.Warn("Failed to expand party size panel", zap.Error(err))
		return nil, nil
	}
	partyButton := fmt.Sprintf("#count-selector%d", partySize)
	if err := waitVisible(page, partyButton, elementWait); err != nil {
		logger.Warn("Party size option not available", zap.Error(err))
		return nil, nil
	}
	if err := click(page, partyButton); err != nil {
		logger.Warn("Failed to select party size", zap.Error(err))
		return nil, nil
	}
	sleep(page, panelSettle)

	// 2. Date
	logger.Info("Setting date", zap.String("date", date))
	if err := d.expandPanel(page, dateHeadingSelector); err != nil {
		logger.Warn("Failed to expand date panel", zap.Error(err))
		return nil, nil
	}
	if err := d.selectDate(page, date); err != nil {
		return nil, err
	}

	// 3. Time window: all day
	if err := d.expandPanel(page, timeHeadingSelector); err != nil {
		logger.Warn("Failed to expand time panel", zap.Error(err))
		return nil, nil
	}
	if isVisible(page, allDaySelector) {
		if err := click(page, allDaySelector); err != nil {
			logger.Warn("Failed to select all-day window", zap.Error(err))
			return nil, nil
		}
		sleep(page, panelSettle)
	}

	// 4. Submit
	logger.Info("Submitting search")
	if err := waitVisible(page, timeSearchSelector, elementWait); err != nil {
		logger.Warn("Time search button not available", zap.Error(err))
		return nil, nil
	}
	if err := click(page, timeSearchSelector); err != nil {
		logger.Warn("Failed to submit time selection", zap.Error(err))
		return nil, nil
	}
	if err := waitVisible(page, locationDoneSelector, elementWait); err != nil {
		logger.Warn("Location panel did not appear", zap.Error(err))
		return nil, nil
	}
	if err := click(page, locationDoneSelector); err != nil {
		logger.Warn("Failed to confirm location", zap.Error(err))
		return nil, nil
	}
	sleep(page, panelSettle)

	// 5. Intercept the availability response
	logger.Info("Waiting for availability results")
	return d.awaitResponse(ctx)
}

// expandPanel clicks a collapsible panel heading when it is not expanded yet
func (d *Driver) expandPanel(page context.Context, heading string) error {
	if attribute(page, heading, "aria-expanded") == "true" {
		return nil
	}
	if err := click(page, heading); err != nil {
		return err
	}
	sleep(page, panelSettle)
	return nil
}

// selectDate clicks the calendar cell for date, advancing the calendar month
// by month (bounded) until the cell is visible. An unreachable date is a hard
// error: retrying cannot fix a date outside the bookable range.
func (d *Driver) selectDate(page context.Context, date string) error {
	dateCell := fmt.Sprintf(`[data-date=%q]`, date)

	monthClicks := 0
	for !isVisible(page, dateCell) && monthClicks < maxMonthClicks {
		if !isVisible(page, nextMonthSelector) {
			break
		}
		if attribute(page, nextMonthSelector, "disabled") != "" {
			break
		}
		if err := click(page, nextMonthSelector); err != nil {
			break
		}
		sleep(page, calendarSettle)
		monthClicks++
	}

	// waitVisible rather than a bare check tolerates residual calendar
	// animation after the last month advance
	if err := waitVisible(page, dateCell, calendarWait); err != nil {
		return fmt.Errorf("%w: %s (too far in the future or past)", ErrDateUnreachable, date)
	}

	if err := click(page, dateCell); err != nil {
		return fmt.Errorf("%w: %s", ErrDateUnreachable, date)
	}
	sleep(page, panelSettle)

	if isVisible(page, dateDoneSelector) {
		if err := click(page, dateDoneSelector); err == nil {
			sleep(page, panelSettle)
		}
	}
	return nil
}

// awaitResponse waits for the armed availability response and fetches its
// body. Timeouts and non-200 statuses are transient.
func (d *Driver) awaitResponse(ctx context.Context) (json.RawMessage, error) {
	page := d.session.Page()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(responseWait):
		logger.Warn("Availability API timed out")
		return nil, nil
	case resp := <-d.responses:
		if resp.status != 200 {
			logger.Warn("Availability API returned non-200 status", zap.Int64("status", resp.status))
			return nil, nil
		}
		var body []byte
		err := chromedp.Run(page, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			body, err = network.GetResponseBody(resp.requestID).Do(ctx)
			return err
		}))
		if err != nil {
			logger.Warn("Failed to read availability response body", zap.Error(err))
			return nil, nil
		}
		return json.RawMessage(body), nil
	}
}

// ResetSearchForm waits out any challenge overlay and navigates back to the
// availability form, used to reset the site's sensor state after a challenge.
func (d *Driver) ResetSearchForm(ctx context.Context) error {
	page := d.session.Page()
	if page == nil {
		return errors.New("session not ready")
	}

	if isVisible(page, challengeOverlaySelector) {
		if err := waitHidden(page, challengeOverlaySelector, challengeWait); err != nil {
			return err
		}
	}

	if err := chromedp.Run(page, chromedp.Navigate(d.session.cfg.BaseURL+"/dine-res/availability/")); err != nil {
		return fmt.Errorf("failed to reload availability page: %w", err)
	}
	sleep(page, pageSettleDelay)
	return nil
}

// Fetch issues a request with the given header set through the existing
// browser session by evaluating a fetch() call in the page. This is the
// capability the replay client builds on.
func (d *Driver) Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResult, error) {
	page := d.session.Page()
	if page == nil {
		return nil, errors.New("session not ready")
	}

	headerJSON, err := json.Marshal(headers)
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf(`(async () => {
		try {
			const res = await fetch(%s, { credentials: 'include', headers: %s });
			const body = res.ok ? await res.text() : "";
			return { status: res.status, body: body };
		} catch (e) {
			return { status: 0, body: "", message: String(e) };
		}
	})()`, jsString(url), headerJSON)

	result := &FetchResult{}
	err = chromedp.Run(page, chromedp.Evaluate(script, result,
		func(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchResult is the outcome of one in-session fetch
type FetchResult struct {
	Status  int    `json:"status"`
	Body    string `json:"body"`
	Message string `json:"message,omitempty"`
}
