package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
	"dinescout/pkg/notifier"
)

const defaultInterval = 60 * time.Second

// Client is the availability surface the polling loop drives. The first
// cycle runs a full UI search; later cycles go through the replay fast path.
type Client interface {
	EnsureSession(ctx context.Context) error
	Search(ctx context.Context, partySize int, date string) (json.RawMessage, error)
	Replay(ctx context.Context, partySize int, date string) (json.RawMessage, error)
	Close()
}

// Options configures one polling run. Immutable once the run starts.
type Options struct {
	Resort    disney.Resort
	Date      string
	PartySize int
	StartTime string
	EndTime   string
	IDs       []string
	Interval  time.Duration
	Out       io.Writer
}

// Monitor is the polling loop: one cycle in flight at a time, fixed delay
// between cycles, explicit termination. The sleep function is injectable so
// backoff and termination behavior is testable without real delays.
type Monitor struct {
	client    Client
	notifiers []notifier.Notifier
	opts      Options
	sleep     func(ctx context.Context, d time.Duration) error
	runID     string

	attempts  int
	startedAt time.Time
}

func New(client Client, notifiers []notifier.Notifier, opts Options) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = defaultInterval
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Monitor{
		client:    client,
		notifiers: notifiers,
		opts:      opts,
		sleep:     realSleep,
		runID:     uuid.NewString(),
	}
}

func realSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run polls until an unfiltered search finds offers, a fatal condition
// occurs, or the context is cancelled. With an id filter the loop never
// terminates on success. The browser is released on every exit path.
func (m *Monitor) Run(ctx context.Context) error {
	m.startedAt = time.Now()
	m.attempts = 0

	log := logger.With(
		zap.String("run", m.runID),
		zap.String("resort", string(m.opts.Resort)),
		zap.String("date", m.opts.Date))

	if len(m.opts.IDs) > 0 {
		log.Info("Checking for tables",
			zap.Int("partySize", m.opts.PartySize),
			zap.Strings("ids", m.opts.IDs))
	} else {
		log.Info("Checking for tables", zap.Int("partySize", m.opts.PartySize))
	}

	for {
		m.attempts++

		payload, err := m.runCycle(ctx)
		if err != nil {
			m.client.Close()
			return err
		}

		if payload == nil {
			if m.attempts == 1 {
				m.client.Close()
				return fmt.Errorf("%w: failed to fetch availability data; delete %s and run again to re-authenticate",
					disney.ErrSessionExpired, disney.ConfigFor(m.opts.Resort).AuthFile)
			}
			log.Warn("API error, retrying",
				zap.Int("attempts", m.attempts),
				zap.Duration("elapsed", time.Since(m.startedAt)))
			if err := m.sleep(ctx, m.opts.Interval); err != nil {
				m.client.Close()
				return err
			}
			continue
		}

		decoded, err := disney.DecodeAvailability(payload)
		if err != nil {
			if m.attempts == 1 {
				m.client.Close()
				return err
			}
			log.Warn("Malformed availability payload, retrying",
				zap.Int("attempts", m.attempts), zap.Error(err))
			if err := m.sleep(ctx, m.opts.Interval); err != nil {
				m.client.Close()
				return err
			}
			continue
		}

		matches := disney.ParseAvailability(decoded, m.opts.Date, m.opts.StartTime, m.opts.EndTime)

		if len(matches) == 0 {
			log.Warn("No offers found for anything, checking again",
				zap.Int("attempts", m.attempts),
				zap.Duration("elapsed", time.Since(m.startedAt)))
			if err := m.sleep(ctx, m.opts.Interval); err != nil {
				m.client.Close()
				return err
			}
			continue
		}

		if len(m.opts.IDs) > 0 {
			m.reportFiltered(ctx, log, matches)
			if err := m.sleep(ctx, m.opts.Interval); err != nil {
				m.client.Close()
				return err
			}
			continue
		}

		log.Info("Found offers", zap.Int("restaurants", len(matches)))
		m.renderTable(matches)
		m.client.Close()
		return nil
	}
}

// runCycle fetches one raw payload: full UI search on the first cycle,
// header replay afterwards.
func (m *Monitor) runCycle(ctx context.Context) (json.RawMessage, error) {
	if m.attempts == 1 {
		if err := m.client.EnsureSession(ctx); err != nil {
			return nil, err
		}
		return m.client.Search(ctx, m.opts.PartySize, m.opts.Date)
	}
	return m.client.Replay(ctx, m.opts.PartySize, m.opts.Date)
}

// reportFiltered reports each requested id and notifies on hits. Polling
// with an id filter always continues regardless of per-id outcomes.
func (m *Monitor) reportFiltered(ctx context.Context, log *zap.Logger, matches map[string]disney.DiningAvailability) {
	for _, id := range m.opts.IDs {
		avail, ok := matches[id]
		if !ok {
			log.Warn("No offers found for restaurant",
				zap.String("id", id),
				zap.Int("attempts", m.attempts))
			continue
		}

		byPeriod := groupByMealPeriod(avail.CleanedTimes)
		if len(byPeriod.order) <= 1 {
			log.Info("Found offers",
				zap.String("restaurant", avail.Restaurant.Name),
				zap.Strings("times", times(avail.CleanedTimes)),
				zap.Int("attempts", m.attempts))
		} else {
			log.Info("Found offers",
				zap.String("restaurant", avail.Restaurant.Name),
				zap.Int("attempts", m.attempts))
			for _, period := range byPeriod.order {
				log.Info(fmt.Sprintf("  %s: %v", period, byPeriod.times[period]))
			}
		}

		notifier.Dispatch(ctx, m.notifiers, notifier.Match{
			Availability: avail,
			PartySize:    m.opts.PartySize,
			Date:         m.opts.Date,
			Resort:       m.opts.Resort,
		})
	}
}

// renderTable prints all matches sorted by display name
func (m *Monitor) renderTable(matches map[string]disney.DiningAvailability) {
	type row struct {
		id    string
		avail disney.DiningAvailability
	}
	rows := make([]row, 0, len(matches))
	for id, avail := range matches {
		rows = append(rows, row{id: id, avail: avail})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].avail.Restaurant.Name < rows[j].avail.Restaurant.Name
	})

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(m.opts.Out)
	t.AppendHeader(table.Row{"Name", "ID", "Available Times"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.avail.Restaurant.Name,
			r.id,
			disney.SummarizeTimes(r.avail.CleanedTimes, 80),
		})
	}
	t.Render()
}

type periodGroups struct {
	order []string
	times map[string][]string
}

func groupByMealPeriod(cleanedTimes []disney.CleanedTime) periodGroups {
	g := periodGroups{times: make(map[string][]string)}
	for _, t := range cleanedTimes {
		if _, seen := g.times[t.MealPeriod]; !seen {
			g.order = append(g.order, t.MealPeriod)
		}
		g.times[t.MealPeriod] = append(g.times[t.MealPeriod], t.Time)
	}
	return g
}

func times(cleanedTimes []disney.CleanedTime) []string {
	out := make([]string, 0, len(cleanedTimes))
	for _, t := range cleanedTimes {
		out = append(out, t.Time)
	}
	return out
}
