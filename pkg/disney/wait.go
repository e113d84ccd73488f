package disney

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Small evaluate-based helpers for panels rendered by the availability app.
// chromedp's own WaitVisible blocks until success, which is wrong for the
// "click to expand only if collapsed" interactions the search flow needs.

// isVisible reports whether the first element matching selector has a
// non-empty bounding box inside the viewport.
func isVisible(ctx context.Context, selector string) bool {
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector(%s);
		if (!el) return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	})()`, jsString(selector))

	var visible bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false
	}
	return visible
}

// waitVisible polls until selector is visible or the timeout elapses
func waitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return pollCondition(ctx, timeout, func() bool { return isVisible(ctx, selector) },
		fmt.Sprintf("element not visible within %v: %s", timeout, selector))
}

// waitHidden polls until selector is absent or hidden, or the timeout elapses
func waitHidden(ctx context.Context, selector string, timeout time.Duration) error {
	return pollCondition(ctx, timeout, func() bool { return !isVisible(ctx, selector) },
		fmt.Sprintf("element still visible after %v: %s", timeout, selector))
}

func pollCondition(ctx context.Context, timeout time.Duration, cond func() bool, failure string) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if cond() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s", failure)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// attribute returns the value of an attribute on the first matching element,
// or "" when the element or attribute is missing.
func attribute(ctx context.Context, selector, name string) string {
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector(%s);
		return el ? (el.getAttribute(%s) || "") : "";
	})()`, jsString(selector), jsString(name))

	var value string
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &value)); err != nil {
		return ""
	}
	return value
}

// click dispatches a DOM click on the first matching element. Returns an
// error when the element does not exist.
func click(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.click();
		return true;
	})()`, jsString(selector))

	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("element not found: %s", selector)
	}
	return nil
}

// jsString safely embeds a Go string as a JS string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
