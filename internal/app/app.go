package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/filippietrz/grafik-urologia/internal/config"
	"github.com/filippietrz/grafik-urologia/internal/httpserver"
	"github.com/filippietrz/grafik-urologia/internal/notify"
	"github.com/filippietrz/grafik-urologia/internal/platform"
	"github.com/filippietrz/grafik-urologia/internal/telemetry"
	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
)

// Run reads config, wires the preference store and the domain engines,
// and starts the mode requested in cfg.Mode: "api" serves HTTP, "generate"
// runs one scheduling pass and prints the result to stdout as CSV.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting grafik-urologia", "mode", cfg.Mode, "backend", cfg.Backend)

	store, cleanup, err := newPreferenceStore(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return fmt.Errorf("creating preference store: %w", err)
	}
	defer cleanup()

	notifier := notify.NewNotifier(cfg.SlackBotToken, cfg.SlackAlertChannel, logger)
	if notifier.IsEnabled() {
		logger.Info("slack notifications enabled", "channel", cfg.SlackAlertChannel)
	} else {
		logger.Info("slack notifications disabled (SLACK_BOT_TOKEN not set)")
	}

	svc := NewService(store, DefaultTeam(), notifier, logger)

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, svc)
	case "generate":
		return runGenerate(ctx, svc)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

// newPreferenceStore builds the configured preference store backend,
// wrapping it in a Redis read-through cache when RedisURL is set. cleanup
// closes whatever infrastructure connections were opened and must always
// be called, even on a nil error.
func newPreferenceStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (preference.Store, func(), error) {
	var store preference.Store
	var closers []func()
	noop := func() {
		for _, c := range closers {
			c()
		}
	}

	switch cfg.Backend {
	case "postgres":
		pool, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to database: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return nil, noop, fmt.Errorf("running migrations: %w", err)
		}
		store = preference.NewPostgresStore(pool)
	case "file", "":
		store = preference.NewFileStore(cfg.PreferencesFilePath)
	default:
		return nil, noop, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}

	if cfg.RedisURL != "" {
		rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to redis: %w", err)
		}
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				logger.Error("closing redis", "error", err)
			}
		})
		store = preference.NewCachedStore(store, rdb, logger)
	}

	return store, noop, nil
}

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, svc *Service) error {
	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(telemetry.All()...)

	srv := httpserver.NewServer(cfg, logger, metricsReg)
	svc.Routes(srv.APIRouter)

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // a generation request can run hundreds of trials
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runGenerate runs one scheduling pass against the configured preference
// store using a same-suggested-limits, current-period request, and prints
// the roster and timetable as two CSV tables to stdout (no PDF export —
// explicitly a non-goal).
func runGenerate(ctx context.Context, svc *Service) error {
	now := time.Now().UTC()
	startMonth := now.Month()
	for startMonth%2 == 0 {
		startMonth--
	}

	records, err := svc.GetPreferences(ctx)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	fixedCounts := make(map[string]int)
	for _, doc := range svc.Team.All() {
		fixedCounts[doc.Name] = 0
	}
	for _, r := range records {
		if r.Status == "FIXED" {
			fixedCounts[r.Doctor]++
		}
	}

	dates, err := calendar.PeriodDates(now.Year(), startMonth)
	if err != nil {
		return fmt.Errorf("computing period dates: %w", err)
	}

	limits := SuggestLimits(len(dates), fixedCounts, svc.Team)

	result, err := svc.GenerateSchedule(ctx, GenerateRequest{
		Year:         now.Year(),
		StartMonth:   int(startMonth),
		TargetLimits: limits,
	})
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}

	return writeCSVTables(os.Stdout, result)
}

func writeCSVTables(w *os.File, result ScheduleResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Data", "Lekarz"}); err != nil {
		return err
	}
	for _, d := range result.Dates {
		doc := result.Roster.Roster[d]
		if err := cw.Write([]string{d.Format("2006-01-02"), doc}); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return err
	}

	header := []string{"Data"}
	doctorOrder := timetableDoctorOrder(result)
	header = append(header, doctorOrder...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range result.Dates {
		row := []string{d.Format("2006-01-02")}
		for _, name := range doctorOrder {
			row = append(row, string(result.Timetable[d][name]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func timetableDoctorOrder(result ScheduleResult) []string {
	if len(result.Dates) == 0 {
		return nil
	}
	first := result.Dates[0]
	names := make([]string, 0, len(result.Timetable[first]))
	for name := range result.Timetable[first] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
