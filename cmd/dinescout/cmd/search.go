package cmd

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
	"dinescout/pkg/monitor"
	"dinescout/pkg/notifier"
)

var (
	flagDate        string
	flagIDs         string
	flagParty       int
	flagShowBrowser bool
	flagStartTime   string
	flagEndTime     string
	flagReauth      bool
)

var clockFlagPattern = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}(?:\s*(?:AM|PM))?$`)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Poll for open dining time slots and report matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateSearchFlags(); err != nil {
			return err
		}

		resort := disney.Resort(flagResort)
		client := disney.NewClient(resort, flagShowBrowser)

		if flagReauth {
			if err := client.Session().ClearCredential(); err != nil {
				return fmt.Errorf("failed to clear saved session: %w", err)
			}
			logger.Info("Cleared saved session, you will be prompted to log in again")
		}

		var ids []string
		if flagIDs != "" {
			ids = strings.Split(flagIDs, ",")
		}

		notifiers := []notifier.Notifier{
			notifier.NewMailNotifier(appConfig.Mail),
			notifier.NewPushoverNotifier(appConfig.Pushover),
		}

		m := monitor.New(client, notifiers, monitor.Options{
			Resort:    resort,
			Date:      flagDate,
			PartySize: flagParty,
			StartTime: flagStartTime,
			EndTime:   flagEndTime,
			IDs:       ids,
		})
		return m.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&flagDate, "date", time.Now().Format("2006-01-02"), "date to search (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&flagIDs, "ids", "", "comma-separated restaurant ids to watch")
	searchCmd.Flags().IntVar(&flagParty, "party", 2, "party size")
	searchCmd.Flags().BoolVar(&flagShowBrowser, "show-browser", false, "keep the browser window visible")
	searchCmd.Flags().StringVar(&flagStartTime, "start-time", "", `earliest acceptable time (e.g. "08:00" or "8:00 AM")`)
	searchCmd.Flags().StringVar(&flagEndTime, "end-time", "", `latest acceptable time (e.g. "13:00" or "1:00 PM")`)
	searchCmd.Flags().BoolVar(&flagReauth, "reauth", false, "discard the saved session and log in again")
}

func validateSearchFlags() error {
	if flagParty < 1 {
		return fmt.Errorf("party size must be at least 1")
	}

	today := time.Now().Format("2006-01-02")
	if flagDate < today {
		return fmt.Errorf("date must not be in the past")
	}

	if flagStartTime != "" && !clockFlagPattern.MatchString(flagStartTime) {
		return fmt.Errorf(`start-time must be a valid time (e.g. "08:00" or "8:00 AM")`)
	}
	if flagEndTime != "" && !clockFlagPattern.MatchString(flagEndTime) {
		return fmt.Errorf(`end-time must be a valid time (e.g. "13:00" or "1:00 PM")`)
	}
	if flagStartTime != "" && flagEndTime != "" {
		if disney.ParseClock(flagStartTime) > disney.ParseClock(flagEndTime) {
			return fmt.Errorf("start-time must be before or equal to end-time")
		}
	}
	return nil
}
