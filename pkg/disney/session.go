package disney

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"dinescout/pkg/logger"
)

const (
	loginPollInterval = 2 * time.Second
	loginSettleDelay  = 5 * time.Second
	pageSettleDelay   = 10 * time.Second
)

// sessionState is the credential blob persisted per resort. Opaque outside
// this package; produced and consumed only by the chromedp binding.
type sessionState struct {
	Cookies      []*network.CookieParam `json:"cookies"`
	LocalStorage map[string]string      `json:"localStorage,omitempty"`
	SavedAt      time.Time              `json:"savedAt"`
}

// Session owns the authenticated browser for one resort: the credential file
// lifecycle and the live chromedp contexts. Exactly one Session exists per
// process; it is created explicitly and closed by its owner.
type Session struct {
	resort      Resort
	cfg         ResortConfig
	showBrowser bool

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewSession creates an unopened session for a resort
func NewSession(resort Resort, showBrowser bool) *Session {
	return &Session{
		resort:      resort,
		cfg:         ConfigFor(resort),
		showBrowser: showBrowser,
	}
}

// Page returns the live browser context. Nil before Ensure succeeds.
func (s *Session) Page() context.Context {
	return s.browserCtx
}

// Resort returns the resort this session is bound to
func (s *Session) Resort() Resort {
	return s.resort
}

// ClearCredential deletes the stored credential so the next Ensure forces an
// interactive login.
func (s *Session) ClearCredential() error {
	if _, err := os.Stat(s.cfg.AuthFile); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(s.cfg.AuthFile)
}

// Ensure makes the session ready: restore and validate the stored credential,
// or run the interactive login flow when there is none (or it has expired).
func (s *Session) Ensure(ctx context.Context) error {
	if s.browserCtx != nil {
		return nil
	}

	state, err := s.loadState()
	if err == nil {
		logger.Info("Loading saved session", zap.String("resort", string(s.resort)))
		if err := s.launchBrowser(ctx, state); err != nil {
			return err
		}
		if s.validate(ctx) {
			return nil
		}
		logger.Warn("Saved session has expired, re-authenticating")
		s.Close()
		if err := s.ClearCredential(); err != nil {
			logger.Warn("Failed to remove credential file", zap.Error(err))
		}
	}

	state, err = s.interactiveLogin(ctx)
	if err != nil {
		return err
	}
	return s.launchBrowser(ctx, state)
}

func (s *Session) loadState() (*sessionState, error) {
	data, err := os.ReadFile(s.cfg.AuthFile)
	if err != nil {
		return nil, err
	}
	state := &sessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Session) saveState(state *sessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.AuthFile, data, 0600)
}

// launchBrowser starts the resort browser, restores the credential blob and
// navigates to the availability search page.
func (s *Session) launchBrowser(ctx context.Context, state *sessionState) error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browserOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		allocCancel()
		browserCancel()
		return classifyLaunchError(err)
	}

	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel

	// Minimize immediately so the window never steals foreground focus
	if !s.showBrowser {
		if err := s.minimizeWindow(); err != nil {
			logger.Debug("Failed to minimize browser window", zap.Error(err))
		}
	}

	if state != nil && len(state.Cookies) > 0 {
		err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			return storage.SetCookies(state.Cookies).Do(ctx)
		}))
		if err != nil {
			return fmt.Errorf("failed to restore session cookies: %w", err)
		}
	}

	logger.Info("Loading availability search page")
	if err := chromedp.Run(browserCtx, chromedp.Navigate(s.cfg.BaseURL+"/dine-res/availability/")); err != nil {
		return fmt.Errorf("failed to open availability page: %w", err)
	}

	if state != nil && len(state.LocalStorage) > 0 {
		s.restoreLocalStorage(state.LocalStorage)
	}

	// Let the app bootstrap and the bot-detection sensors settle
	logger.Info("Waiting for page to initialize")
	sleep(browserCtx, pageSettleDelay)
	return nil
}

// validate checks the current navigated URL: still on the resort domain and
// not bounced to a login, registration or authorization page.
func (s *Session) validate(ctx context.Context) bool {
	var currentURL string
	if err := chromedp.Run(s.browserCtx, chromedp.Location(&currentURL)); err != nil {
		return false
	}
	logger.Info("Browser location", zap.String("url", currentURL))

	lowered := strings.ToLower(currentURL)
	if strings.Contains(lowered, "login") || strings.Contains(lowered, "registerdisney") {
		return false
	}
	return strings.Contains(lowered, s.cfg.Domain)
}

// interactiveLogin opens a visible browser at the resort login page, waits
// for the user to finish logging in (polling the URL with no overall
// deadline), then captures and persists the session blob.
func (s *Session) interactiveLogin(ctx context.Context) (*sessionState, error) {
	logger.Warn("No valid session found, opening a browser for you to log in")
	logger.Info("Please log in to your account in the browser window; it will close automatically once login is detected")

	opts := browserOptions()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	loginCtx, loginCancel := chromedp.NewContext(allocCtx)
	defer loginCancel()

	if err := chromedp.Run(loginCtx, chromedp.Navigate(s.cfg.BaseURL+"/login/")); err != nil {
		return nil, classifyLaunchError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ErrLoginInterrupted
		case <-time.After(loginPollInterval):
		}

		var currentURL string
		if err := chromedp.Run(loginCtx, chromedp.Location(&currentURL)); err != nil {
			// page may be mid-navigation
			continue
		}
		if loggedInURL(strings.ToLower(currentURL), s.cfg.Domain) {
			break
		}
	}

	logger.Info("Login detected, saving session")
	sleep(loginCtx, loginSettleDelay)

	state, err := captureState(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginInterrupted, err)
	}
	if err := s.saveState(state); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	logger.Info("Session saved", zap.String("file", s.cfg.AuthFile))
	return state, nil
}

func loggedInURL(lowered, domain string) bool {
	return strings.Contains(lowered, domain) &&
		!strings.Contains(lowered, "/login") &&
		!strings.Contains(lowered, "registerdisney") &&
		!strings.Contains(lowered, "authz")
}

// captureState snapshots cookies and local storage from the live browser
func captureState(ctx context.Context) (*sessionState, error) {
	state := &sessionState{SavedAt: time.Now()}

	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				param := &network.CookieParam{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Secure:   c.Secure,
					HTTPOnly: c.HTTPOnly,
					SameSite: c.SameSite,
				}
				if c.Expires > 0 {
					expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
					param.Expires = &expires
				}
				state.Cookies = append(state.Cookies, param)
			}
			return nil
		}),
		chromedp.Evaluate(`Object.assign({}, window.localStorage)`, &state.LocalStorage),
	)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Session) restoreLocalStorage(entries map[string]string) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	script := fmt.Sprintf(`(function(entries) {
		for (const [key, value] of Object.entries(entries)) {
			window.localStorage.setItem(key, value);
		}
	})(%s)`, payload)
	if err := chromedp.Run(s.browserCtx, chromedp.Evaluate(script, nil)); err != nil {
		logger.Debug("Failed to restore local storage", zap.Error(err))
	}
}

func (s *Session) minimizeWindow() error {
	return chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := browser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return browser.SetWindowBounds(windowID, &browser.Bounds{
			WindowState: browser.WindowStateMinimized,
		}).Do(ctx)
	}))
}

// Close releases the browser process and contexts
func (s *Session) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.browserCtx = nil
}

// classifyLaunchError maps a chromedp startup failure to the error taxonomy.
// A missing executable gets a remediation hint since it is the most common
// first-run failure.
func classifyLaunchError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "no such file or directory") ||
		strings.Contains(msg, "exec:") {
		return fmt.Errorf("%w: install Google Chrome or Chromium and try again: %v", ErrBrowserNotFound, err)
	}
	return fmt.Errorf("failed to start browser: %w", err)
}
