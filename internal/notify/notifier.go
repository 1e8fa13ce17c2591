// Package notify posts diagnostic summaries of a schedule generation run
// to Slack — the shell's way of satisfying spec.md §7's "the shell MUST
// display UNFILLED dates... MUST display denied_fixed_list".
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	goslack "github.com/slack-go/slack"

	"github.com/filippietrz/grafik-urologia/internal/telemetry"
	"github.com/filippietrz/grafik-urologia/pkg/roster"
)

// Notifier posts schedule-generation summaries to Slack. If botToken is
// empty it is a silent no-op, exactly like the teacher's
// pkg/slack.Notifier.IsEnabled() guard.
type Notifier struct {
	client  *goslack.Client
	channel string
	logger  *slog.Logger
}

// NewNotifier creates a Notifier. If botToken is empty, IsEnabled reports
// false and every Post call is a no-op.
func NewNotifier(botToken, channel string, logger *slog.Logger) *Notifier {
	var client *goslack.Client
	if botToken != "" {
		client = goslack.New(botToken)
	}
	return &Notifier{client: client, channel: channel, logger: logger}
}

// IsEnabled reports whether this notifier has a usable Slack client.
func (n *Notifier) IsEnabled() bool {
	return n.client != nil && n.channel != ""
}

// PostScheduleSummary posts a warning to the configured channel if out has
// any UNFILLED day or any denied FIXED claim. It is a no-op, successfully,
// when the roster is complete and uncontested, and a no-op when the
// notifier itself is disabled.
func (n *Notifier) PostScheduleSummary(ctx context.Context, runID string, periodStart time.Time, out roster.GenerateOutput) error {
	unfilled := unfilledDates(out.Roster)
	if len(unfilled) == 0 && len(out.DeniedFixed) == 0 {
		return nil
	}

	if !n.IsEnabled() {
		n.logger.Info("schedule summary not sent: slack notifier disabled",
			"run_id", runID, "unfilled_count", len(unfilled), "denied_fixed_count", len(out.DeniedFixed))
		return nil
	}

	text := summaryText(runID, periodStart, unfilled, out)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, goslack.MsgOptionText(text, false))
	if err != nil {
		telemetry.SlackNotificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("posting schedule summary to slack: %w", err)
	}

	telemetry.SlackNotificationsTotal.WithLabelValues("sent").Inc()
	n.logger.Info("posted schedule summary to slack",
		"run_id", runID, "unfilled_count", len(unfilled), "denied_fixed_count", len(out.DeniedFixed))
	return nil
}

func unfilledDates(r roster.Roster) []time.Time {
	var out []time.Time
	for d, doc := range r {
		if doc == roster.Unfilled {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func summaryText(runID string, periodStart time.Time, unfilled []time.Time, out roster.GenerateOutput) string {
	text := fmt.Sprintf("Schedule run `%s` for period starting %s: %d unfilled day(s), %d denied FIXED claim(s).\n",
		runID, periodStart.Format("2006-01-02"), len(unfilled), len(out.DeniedFixed))

	for _, d := range unfilled {
		reasons := out.RejectionReasons[d]
		text += fmt.Sprintf("- UNFILLED %s: %s\n", d.Format("2006-01-02"), formatReasons(reasons))
	}
	for _, denied := range out.DeniedFixed {
		text += fmt.Sprintf("- %s lost FIXED claim on %s (%s)\n", denied.Doctor, denied.Date.Format("2006-01-02"), denied.Reason)
	}
	return text
}

func formatReasons(reasons map[string]roster.RejectReason) string {
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	s := ""
	for i, name := range names {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%s", name, reasons[name])
	}
	return s
}
