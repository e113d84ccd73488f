package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
)

// Match is one confirmed availability finding delivered to every channel
type Match struct {
	Availability disney.DiningAvailability
	PartySize    int
	Date         string
	Resort       disney.Resort
}

// Notifier is a notification channel. Implementations own their failure
// reporting; errors returned here are logged and never propagated to the
// polling loop.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, match Match) error
}

// Dispatch fans a match out to all channels concurrently. It waits for the
// slow channels to finish but swallows their failures: a broken channel must
// never stop the polling loop.
func Dispatch(ctx context.Context, notifiers []Notifier, match Match) {
	var wg sync.WaitGroup
	for _, n := range notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := n.Notify(ctx, match); err != nil {
				logger.Error("Notification channel failed",
					zap.String("channel", n.Name()),
					zap.String("restaurant", match.Availability.Restaurant.Name),
					zap.Error(err))
			}
		}(n)
	}
	wg.Wait()
}
