// Package main is the entry point for the popkitd notification daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/audio"
	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/daemon"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/display"
	"github.com/jmylchreest/popkit/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.popkitd"
	appName = "popkitd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to popkitd.toml (default: ~/.config/popkit/popkitd.toml)")
	themeName := flag.String("theme", "", "Theme to use instead of the configured one")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	listThemes := flag.Bool("list-themes", false, "List available themes and exit")
	initConfig := flag.Bool("init-config", false, "Write the default config file if none exists and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("popkitd version", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if *listThemes {
		if err := printThemes(); err != nil {
			logger.Error("failed to list themes", "error", err)
			os.Exit(1)
		}
		return
	}

	if *initConfig {
		if err := writeDefaultConfig(*configPath); err != nil {
			logger.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	run(logger, *configPath, *themeName, *metricsAddr)
}

// writeDefaultConfig saves DefaultDaemonConfig unless the file exists.
func writeDefaultConfig(path string) error {
	if path == "" {
		path = config.DaemonConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Println(path, "already exists")
		return nil
	}
	if err := config.SaveDaemonConfig(path, config.DefaultDaemonConfig()); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

func printThemes() error {
	themes, err := theme.List(theme.Dir())
	if err != nil {
		return err
	}
	for _, t := range themes {
		source := t.Path
		if t.Bundled {
			source = "bundled"
		}
		fmt.Printf("%-16s %s\n", t.Name, source)
	}
	return nil
}

// run starts popkitd as the session's notification server.
func run(logger *slog.Logger, configPath, themeOverride, metricsAddr string) {
	logger.Info("starting popkitd", "version", version)

	cfg, err := config.LoadDaemonConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if themeOverride != "" {
		cfg.Theme.Name = themeOverride
	}

	// Foreign notifications are styled with the same policy the CLI uses.
	clientCfg, err := config.LoadConfig("")
	if err != nil {
		logger.Warn("failed to load popkit config, using defaults", "error", err)
		clientCfg = config.DefaultConfig()
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		dbusServer     *dbus.NotificationServer
		displayManager *display.Manager
		themeLoader    *theme.Loader
		audioManager   *audio.Manager
		configWatcher  *daemon.ConfigWatcher
		running        atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metrics *daemon.Metrics
	var metricsServer *http.Server
	if metricsAddr != "" {
		metrics = daemon.NewMetrics()
		metricsServer = serveMetrics(metricsAddr, metrics, logger)
	}

	stop := func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = metricsServer.Shutdown(shutdownCtx)
			cancel()
		}
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if themeLoader != nil {
			if err := themeLoader.Close(); err != nil {
				logger.Debug("failed to stop theme watcher", "error", err)
			}
		}
		if audioManager != nil {
			audioManager.Stop()
		}
		if displayManager != nil {
			displayManager.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	schedule := func(fn func()) {
		glib.IdleAdd(fn)
	}

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		dbusServer = dbus.NewNotificationServer(logger)
		info := dbus.DefaultServerInfo()
		info.Version = version
		dbusServer.SetServerInfo(info)

		internal := daemon.NewServerRenderer(dbusServer, appName)
		notifier := daemon.NewInternalNotifier(alert.New(internal, alert.WithLogger(logger)), logger)
		notifier.Configure(cfg.Behavior)

		themeLoader = theme.NewLoader("", logger)
		if err := themeLoader.Load(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme, using default", "error", err)
		}
		themeLoader.Apply(nil)
		themeLoader.SetReloadCallback(func(name string, err error) {
			if err != nil {
				notifier.NotifyThemeError(err)
				return
			}
			notifier.NotifyThemeReloaded(name)
		})
		if err := themeLoader.Watch(ctx); err != nil {
			logger.Warn("failed to watch themes", "error", err)
		}

		audioManager = audio.NewManager(cfg, logger)
		audioManager.SetErrorCallback(notifier.NotifyAudioError)

		displayManager = display.NewManager(&app.Application, cfg, logger)
		if err := displayManager.Start(); err != nil {
			logger.Error("failed to start display manager", "error", err)
			app.Quit()
			return
		}
		notifier.SetDisplay(displayManager)

		router := daemon.NewRouter(dbusServer, displayManager, schedule,
			daemon.WithSounds(audioManager),
			daemon.WithPolicy(alert.PolicyFromConfig(clientCfg)),
			daemon.WithInternal(internal),
			daemon.WithMetrics(metrics),
			daemon.WithRouterLogger(logger),
		)

		dbusServer.SetNotifyHandler(router.HandleNotify)
		dbusServer.SetCloseHandler(router.HandleCloseRequest)
		displayManager.SetCloseCallback(router.PopupClosed)
		displayManager.SetActionCallback(router.PopupAction)

		// Started once notices can reach the display.
		if err := audioManager.Start(ctx); err != nil {
			logger.Warn("failed to start audio manager", "error", err)
		}

		if err := dbusServer.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			displayManager.Stop()
			app.Quit()
			return
		}

		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
			glib.IdleAdd(func() {
				if themeOverride != "" {
					newConfig.Theme.Name = themeOverride
				}

				notifier.Configure(newConfig.Behavior)
				displayManager.UpdateConfig(newConfig)
				audioManager.UpdateConfig(newConfig)

				if newConfig.Theme.Name != cfg.Theme.Name {
					if err := themeLoader.Load(newConfig.Theme.Name); err != nil {
						logger.Warn("failed to load new theme", "theme", newConfig.Theme.Name, "error", err)
						notifier.NotifyThemeError(err)
					} else {
						notifier.NotifyThemeReloaded(newConfig.Theme.Name)
					}
				}

				cfg = newConfig
				notifier.NotifyConfigReloaded()
			})
		})
		configWatcher.SetErrorCallback(notifier.NotifyConfigError)
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("popkitd ready", "dbus_interface", dbus.DBusInterface, "theme", cfg.Theme.Name)

		// GTK quits when the last window closes; popups come and go, so
		// keep a hidden window around.
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stop()
		running.Store(false)
	})

	// GTK must not see our flags.
	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("popkitd stopped")
}

// serveMetrics exposes metrics on addr until the server is shut down.
func serveMetrics(addr string, metrics *daemon.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
