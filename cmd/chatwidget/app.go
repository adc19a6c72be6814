package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/chatwidget/observability"
	"github.com/tailored-agentic-units/chatwidget/render"
	"github.com/tailored-agentic-units/chatwidget/widget"
)

const defaultStorageDir = ".chatwidget"

// app bundles what every command needs: a restored widget and a renderer.
type app struct {
	widget   *widget.Widget
	renderer render.Renderer
	out      io.Writer

	metrics     *prometheus.Registry
	metricsFile string
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	baseURL, _ := flags.GetString("base-url")
	storagePath, _ := flags.GetString("storage")
	storageDriver, _ := flags.GetString("storage-driver")
	format, _ := flags.GetString("format")
	verbose, _ := flags.GetBool("verbose")
	logLevel, _ := flags.GetString("log-level")
	metricsFile, _ := flags.GetString("metrics-file")

	cfg, err := widget.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		cfg.Transport.BaseURL = baseURL
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if storageDriver != "" {
		cfg.Storage.Driver = storageDriver
	}
	if cfg.Storage.Path == "" && cfg.Storage.Driver == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Storage.Path = filepath.Join(home, defaultStorageDir)
		}
	}

	out := cmd.OutOrStdout()
	var renderer render.Renderer
	switch format {
	case "text":
		renderer = render.NewTextRenderer(out)
	case "html":
		renderer = render.NewHTMLRenderer(out)
	default:
		return nil, fmt.Errorf("unknown format %q: want text or html", format)
	}

	level, err := observability.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = observability.LevelVerbose
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level.ZerologLevel()).
		With().Timestamp().Logger()

	var observer observability.Observer = observability.NewZerologObserver(logger)

	a := &app{renderer: renderer, out: out, metricsFile: metricsFile}
	if metricsFile != "" {
		a.metrics = prometheus.NewRegistry()
		metrics, err := observability.NewMetricsObserver(a.metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		observer = observability.NewMultiObserver(observer, metrics)
	}

	// Commands render once when they finish; only the typing cue is live.
	w, err := widget.New(cfg,
		widget.WithObserver(observer),
		widget.WithTransportLogger(logger.With().Str("component", "transport").Logger()),
		widget.WithTypingIndicator(render.NewStatusLine(cmd.ErrOrStderr())),
	)
	if err != nil {
		return nil, err
	}
	a.widget = w

	w.Restore(cmd.Context())
	return a, nil
}

// close releases storage and flushes metrics.
func (a *app) close() error {
	err := a.widget.Close()
	if a.metrics != nil {
		if werr := prometheus.WriteToTextfile(a.metricsFile, a.metrics); werr != nil && err == nil {
			err = fmt.Errorf("failed to write metrics: %w", werr)
		}
	}
	return err
}

// run opens the app, calls fn and closes the app.
func run(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

// selectConversation activates the conversation at index. A negative index
// leaves the widget in the pre-chat state so the next message starts a new
// conversation.
func (a *app) selectConversation(cmd *cobra.Command, index int) error {
	store := a.widget.Store()
	if index < 0 {
		store.ClearActive(cmd.Context())
		return nil
	}
	if !store.LoadConversation(cmd.Context(), index) {
		return fmt.Errorf("no conversation at index %d (have %d)", index, store.Len())
	}
	return nil
}

func (a *app) showActive(cmd *cobra.Command) error {
	c, ok := a.widget.Store().Active()
	if !ok {
		return nil
	}
	return a.renderer.RenderConversation(cmd.Context(), c)
}
