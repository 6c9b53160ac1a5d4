package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/rkconfig/internal/config"
	diag "github.com/coreman2200/rkconfig/internal/diagnostics"
	"github.com/coreman2200/rkconfig/internal/metrics"
	"github.com/coreman2200/rkconfig/internal/modes"
	"github.com/coreman2200/rkconfig/internal/preview"
	"github.com/coreman2200/rkconfig/internal/protocol"
	"github.com/coreman2200/rkconfig/internal/report"
	"github.com/coreman2200/rkconfig/internal/ws"
)

var openPreview = preview.Open

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "modes":
		return runModes(args[1:], stdout, stderr)
	case "build":
		return runBuild(args[1:], stdout, stderr)
	case "lint":
		return runLint(args[1:], stdout, stderr)
	case "send":
		return runSend(args[1:], stdout, stderr)
	case "preview":
		return runPreview(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintln(stderr, "unknown command:", args[0])
		printUsage(stderr)
		return 2
	}
}

// common holds the flags every config-driven subcommand accepts.
type common struct {
	configPath *string
	debug      *bool
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		configPath: fs.String("config", "config.yaml", "path to config.yaml"),
		debug:      fs.Bool("debug", false, "debug logging"),
	}
}

func (c common) logger(stderr io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if *c.debug {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).Level(level)
	return log.Logger
}

// load returns a non-zero exit code when the config cannot be used:
// 2 when it parses but is invalid, 1 for anything else.
func (c common) load(stderr io.Writer) (*config.Config, int) {
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		if errors.Is(err, config.ErrInvalid) {
			return nil, 2
		}
		return nil, 1
	}
	return cfg, 0
}

func runModes(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rgb := fs.Bool("rgb", false, "list the RGB family instead of single-colour")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	list := modes.List(modes.FamilyOf(*rgb))
	if *asJSON {
		return writeJSON(stdout, stderr, list)
	}
	for _, m := range list {
		fmt.Fprintf(stdout, "%3d  %s\n", m.ModeBit, m.Name)
	}
	return 0
}

type sectionOut struct {
	Kind   protocol.Kind `json:"kind"`
	Frames []string      `json:"frames"`
}

func runBuild(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := commonFlags(fs)
	asJSON := fs.Bool("json", false, "print JSON")
	requireColor := fs.Bool("require-color", false, "reject a light mode without a base colour")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := cf.logger(stderr)
	cfg, rc := cf.load(stderr)
	if rc != 0 {
		return rc
	}

	sections, err := newBuilder(*requireColor).BuildSections(cfg.Keyboard, cfg.Config)
	if err != nil {
		logger.Error().Err(err).Msg("build failed")
		return 1
	}

	if *asJSON {
		out := make([]sectionOut, 0, len(sections))
		for _, s := range sections {
			so := sectionOut{Kind: s.Kind}
			for _, f := range s.Frames {
				so.Frames = append(so.Frames, f.String())
			}
			out = append(out, so)
		}
		return writeJSON(stdout, stderr, out)
	}
	for _, s := range sections {
		for i, f := range s.Frames {
			fmt.Fprintf(stdout, "%-14s %d/%d %s\n", s.Kind, i+1, len(s.Frames), f.String())
		}
	}
	return 0
}

func runLint(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := commonFlags(fs)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cf.logger(stderr)
	cfg, rc := cf.load(stderr)
	if rc != 0 {
		return rc
	}

	ds := diag.Lint(cfg.Keyboard, cfg.Config)
	if *asJSON {
		if rc := writeJSON(stdout, stderr, ds); rc != 0 {
			return rc
		}
	} else {
		for _, d := range ds {
			fmt.Fprintf(stdout, "%-7s %s: %s\n", d.Severity, d.Code, d.Summary)
		}
	}
	if diag.HasErrors(ds) {
		return 1
	}
	return 0
}

func runSend(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := commonFlags(fs)
	driver := fs.String("driver", "", "report driver: hid | sim (overrides config)")
	path := fs.String("path", "", "hid device path (overrides config)")
	delay := fs.Duration("delay", -1, "delay between reports (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := cf.logger(stderr)
	cfg, rc := cf.load(stderr)
	if rc != 0 {
		return rc
	}
	applyTransportFlags(cfg, *driver, *path, *delay)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	frames, err := protocol.BuildBuffers(cfg.Keyboard, cfg.Config)
	if err != nil {
		logger.Error().Err(err).Msg("build failed")
		return 1
	}

	port, err := report.Open(cfg.Transport.Driver, cfg.Transport.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Transport.Driver).Msg("open transport")
		return 1
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := report.NewSender(port,
		report.WithFrameDelay(cfg.Transport.FrameDelay()),
		report.WithLogger(logger),
	)
	if err := sender.Send(ctx, frames); err != nil {
		logger.Error().Err(err).Msg("send failed")
		return 1
	}
	fmt.Fprintf(stdout, "sent %d reports to %s\n", len(frames), port.String())
	return 0
}

func runPreview(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := commonFlags(fs)
	driver := fs.String("driver", "", "preview driver: screen | spi (overrides config)")
	hold := fs.Duration("hold", 0, "keep the preview lit this long before clearing it")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := cf.logger(stderr)
	cfg, rc := cf.load(stderr)
	if rc != 0 {
		return rc
	}
	if *driver != "" {
		cfg.Preview.Driver = *driver
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	lm := cfg.Config.LightMode
	if lm == nil || lm.CustomColors == nil {
		fmt.Fprintln(stderr, "config has no custom_colors to preview")
		return 1
	}

	r, err := openPreview(cfg.Preview, logger)
	if err != nil {
		logger.Error().Err(err).Msg("open preview")
		return 1
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Warn().Err(err).Msg("clear preview")
		}
	}()
	if err := r.Render(lm.CustomColors); err != nil {
		logger.Error().Err(err).Msg("render preview")
		return 1
	}
	fmt.Fprintln(stdout)
	if *hold > 0 {
		time.Sleep(*hold)
	}
	return 0
}

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := commonFlags(fs)
	addr := fs.String("addr", "", "HTTP listen address (overrides config)")
	driver := fs.String("driver", "", "report driver: hid | sim (overrides config)")
	path := fs.String("path", "", "hid device path (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := cf.logger(stderr)

	// ---- config is optional here; the server can run on defaults ----
	cfg, err := config.Load(*cf.configPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", *cf.configPath).Msg("config load failed; proceeding with defaults")
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	applyTransportFlags(cfg, *driver, *path, -1)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	m := metrics.New()
	var sender ws.Sender
	port, err := report.Open(cfg.Transport.Driver, cfg.Transport.Path, logger)
	if err != nil {
		logger.Warn().Err(err).Str("driver", cfg.Transport.Driver).Msg("transport unavailable; send disabled")
	} else {
		defer port.Close()
		sender = report.NewSender(port,
			report.WithFrameDelay(cfg.Transport.FrameDelay()),
			report.WithLogger(logger),
			report.WithMetrics(m),
		)
	}

	state := ws.NewState(cfg.Keyboard, cfg.Config, sender, logger)
	state.Metrics = m
	state.Driver = cfg.Transport.Driver

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      withCORS(state.Routes()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("driver", cfg.Transport.Driver).Msg("HTTP server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			return 1
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return 0
}

func newBuilder(requireColor bool) *protocol.Builder {
	if requireColor {
		return protocol.NewBuilder(protocol.WithColorRequired())
	}
	return protocol.NewBuilder()
}

func applyTransportFlags(cfg *config.Config, driver, path string, delay time.Duration) {
	if driver != "" {
		cfg.Transport.Driver = driver
	}
	if path != "" {
		cfg.Transport.Path = path
	}
	if delay >= 0 {
		cfg.Transport.FrameDelayMs = int(delay / time.Millisecond)
	}
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  rkconf modes [--rgb] [--json]")
	fmt.Fprintln(w, "  rkconf build [--config config.yaml] [--json] [--require-color]")
	fmt.Fprintln(w, "  rkconf lint [--config config.yaml] [--json]")
	fmt.Fprintln(w, "  rkconf send [--config config.yaml] [--driver hid|sim] [--path /dev/hidrawN] [--delay 20ms]")
	fmt.Fprintln(w, "  rkconf preview [--config config.yaml] [--driver screen|spi] [--hold 5s]")
	fmt.Fprintln(w, "  rkconf serve [--config config.yaml] [--addr :8080] [--driver hid|sim] [--path /dev/hidrawN]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  modes    list lighting modes for a keyboard family")
	fmt.Fprintln(w, "  build    print the reports a configuration encodes to")
	fmt.Fprintln(w, "  lint     report settings the keyboard will skip or drop")
	fmt.Fprintln(w, "  send     build and write the reports to a keyboard")
	fmt.Fprintln(w, "  preview  show the per-key colours on the console or an LED strip")
	fmt.Fprintln(w, "  serve    run the websocket control server")
}
