package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"remindcal/internal/app"
	"remindcal/internal/calendar"
	"remindcal/internal/config"
	"remindcal/internal/ics"
	appLog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/notify"
	"remindcal/internal/store"
	"remindcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	envFile    string
	ephemeral  bool
	printMonth bool
}

func main() {
	flags := parseFlags()

	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		appLog.Warn("failed to load env file", "path", flags.envFile, "err", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("remindcal starting",
		"listen", conf.Listen,
		"data_dir", conf.DataDir,
		"week_start", conf.WeekStart,
		"check_schedule", conf.CheckSchedule,
		"firing_window", conf.FiringWindow.String(),
		"local_notifications", conf.Notifications.Local,
		"email", conf.Notifications.Email.Host != "",
		"redis", conf.Notifications.Redis.URL != "",
		"import_urls", conf.ImportURLs,
		"ephemeral", flags.ephemeral,
	)

	var st store.Store
	if flags.ephemeral {
		st = store.NewMemory()
	} else {
		st, err = store.OpenBolt(conf.DataDir)
		if err != nil {
			appLog.Error("failed to open store", err, "data_dir", conf.DataDir)
			os.Exit(1)
		}
	}
	defer st.Close()

	if flags.printMonth {
		printCurrentMonth(conf, st)
		return
	}

	channels := []notify.Channel{notify.NewEmail(notify.EmailConfig{
		Host:     conf.Notifications.Email.Host,
		Port:     conf.Notifications.Email.Port,
		Username: conf.Notifications.Email.Username,
		Password: conf.Notifications.Email.Password,
		From:     conf.Notifications.Email.From,
	})}
	if conf.Notifications.Redis.URL != "" {
		rc, err := notify.NewRedis(conf.Notifications.Redis.URL, conf.Notifications.Redis.Channel)
		if err != nil {
			appLog.Error("redis channel disabled", err)
		} else {
			defer rc.Close()
			channels = append(channels, rc)
		}
	}

	a := app.New(conf, st, notify.NewInbox(conf.Notifications.Local), time.Now, channels...)
	defer a.Close()

	if ws, ok, err := a.Resume(); err != nil {
		appLog.Error("failed to resume session", err)
	} else if ok {
		appLog.Info("resumed session", "user", ws.User())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fetcher *ics.Fetcher
	if conf.ImportURLs {
		fetcher = ics.NewFetcher(0)
	}
	srv := web.NewServer(conf, a, fetcher)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}
	appLog.Info("remindcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/remindcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.envFile, "env", ".env", "Optional .env file with SMTP/Redis secrets")
	flag.BoolVar(&cfg.ephemeral, "ephemeral", false, "Keep everything in memory; nothing survives a restart")
	flag.BoolVar(&cfg.printMonth, "print-month", false, "Print the current month grid and exit")

	flag.Parse()

	return cfg
}

// printCurrentMonth renders this month for the stored user, or an empty
// month when nobody is signed in.
func printCurrentMonth(conf *config.Config, st store.Store) {
	var (
		events    []model.Event
		reminders []model.Reminder
	)
	if user, ok := st.CurrentUser(); ok {
		events = st.Events(user)
		reminders = st.Reminders(user)
	}
	now := time.Now()
	g := calendar.MonthGrid(now.Year(), now.Month(), events, reminders, calendar.Options{
		Now:       now,
		WeekStart: conf.WeekStartDay(),
	})
	writeGrid(os.Stdout, g)
}
