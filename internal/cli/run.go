package cli

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/kevinbotlib/dashboard/internal/model"
	"github.com/kevinbotlib/dashboard/internal/project"
	"github.com/kevinbotlib/dashboard/internal/telemetry"
	"github.com/kevinbotlib/dashboard/internal/ui"
)

const (
	appID       = "org.kevinbotlib.dashboard"
	windowTitle = "KevinbotLib Dashboard"
)

// networkFlags override the robot address from the settings file.
type networkFlags struct {
	host string
	port int
}

// apply writes the overrides into s after validating them.
func (n networkFlags) apply(s *model.Settings) error {
	if n.host != "" {
		if !model.ValidIPv4(n.host) {
			return fmt.Errorf("--host %q is not an IPv4 address", n.host)
		}
		s.IP = n.host
	}
	if n.port != 0 {
		if n.port < model.MinPort || n.port > model.MaxPort {
			return fmt.Errorf("--port %d is outside %d-%d", n.port, model.MinPort, model.MaxPort)
		}
		s.Port = n.port
	}
	return nil
}

// loadSettings reads the settings file, falling back to defaults when it
// cannot be parsed.
func loadSettings(ctx context.Context, path string) model.Settings {
	logger := loggerFromContext(ctx)
	s, err := project.LoadSettings(path, logger)
	if err != nil {
		logger.Warn("using default settings", "path", path, "err", err)
		return model.DefaultSettings()
	}
	return s
}

// runDashboard opens the dashboard window and blocks until it closes or ctx
// is cancelled.
func runDashboard(ctx context.Context, opts *options, net networkFlags) error {
	logger := loggerFromContext(ctx)

	settings := loadSettings(ctx, opts.configPath)
	if err := net.apply(&settings); err != nil {
		return err
	}

	client := telemetry.NewRedisClient(telemetry.RedisOptions{
		Host: settings.IP,
		Port: settings.Port,
		DB:   settings.RedisDB,
	}, logger)
	defer client.Close()

	library, err := project.OpenLibrary(opts.libraryPath)
	if err != nil {
		logger.Warn("layout library unavailable", "path", opts.libraryPath, "err", err)
	} else {
		defer library.Close()
	}

	application := app.NewWithID(appID)
	window := application.NewWindow(windowTitle)

	dashboard := ui.NewApp(application, window, ui.Options{
		Logger:     logger,
		ConfigPath: opts.configPath,
		Settings:   settings,
		Client:     client,
		Library:    library,
	})
	dashboard.SetupMenus()
	window.SetContent(dashboard.Build())
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	dashboard.Start(ctx)
	defer dashboard.Shutdown()

	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	logger.Info("dashboard started", "robot", settings.Address())
	window.ShowAndRun()

	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
