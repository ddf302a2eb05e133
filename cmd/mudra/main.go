package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON config file")
	controller := flag.String("controller", "", "LED controller base URL (e.g. http://192.168.4.1)")
	cameraID := flag.Int("camera", -1, "camera device index")
	listen := flag.String("listen", "", "status server address, \"off\" to disable")
	dbPath := flag.String("db", "", "SQLite database path")
	useTray := flag.Bool("tray", false, "show a system tray indicator")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if *controller != "" {
		cfg.ControllerURL = *controller
	}
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *useTray {
		cfg.Tray = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Init(cfg.LogLevel)
	log.Info("mudra starting", "controller", cfg.ControllerURL, "camera", cfg.CameraID)

	if cfg.DBPath == "" {
		p, err := defaultDBPath()
		if err != nil {
			return err
		}
		cfg.DBPath = p
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	a, err := app.New(app.Options{Config: cfg, Store: st})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ListenAddr != "" && cfg.ListenAddr != "off" {
		srv := server.New(server.Config{
			StaticDir: findWebDir(),
			Store:     st,
			Controls:  a,
			Sender:    a.Dispatcher(),
		})
		go func() {
			if err := srv.Serve(ctx, cfg.ListenAddr); err != nil {
				log.Error("status server failed", "error", err)
			}
		}()
	}

	if !cfg.Tray {
		return runPipeline(ctx, a)
	}

	// The tray owns the main goroutine; the pipeline runs beside it.
	t := tray.New(a.Status, a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnQuit(stop)
	if cfg.ListenAddr != "" && cfg.ListenAddr != "off" {
		t.OnSettings(func() { openBrowser(dashboardURL(cfg.ListenAddr)) })
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runPipeline(ctx, a)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

func runPipeline(ctx context.Context, a *app.App) error {
	err := a.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("pipeline: %w", err)
	}
	log.Info("mudra stopped")
	return nil
}

// defaultDBPath returns ~/.mudra/mudra.db, creating the directory.
func defaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(dir, "mudra.db"), nil
}

// findWebDir searches "web", "../web", "../../web" and ~/.mudra/web for a
// dashboard directory. Returns "" if none exists.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("failed to open browser", "url", url, "error", err)
	}
}
