package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"

	"github.com/freundm/dezoomify/internal/compose"
	"github.com/freundm/dezoomify/internal/config"
	"github.com/freundm/dezoomify/internal/fetch"
	"github.com/freundm/dezoomify/internal/untiler"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitSourceError  = 3
	ExitToolNotFound = 4
	ExitOutputError  = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dezoom", flag.ContinueOnError)

	base := fs.Bool("b", false, "URL is the tile-set base directory, not an embedding page")
	list := fs.Bool("l", false, "URL is a local list file with one image per line")
	zoom := fs.Int("z", -1, "Zoom level to reassemble (-1 selects the finest)")
	persist := fs.Bool("s", false, "Keep the downloaded tiles next to the output")
	skip := fs.Bool("x", false, "Recompose from previously kept tiles without downloading (implies -s)")
	workers := fs.Int("t", 0, "Number of parallel tile downloads")
	jpegtran := fs.String("j", "", "Path to the jpegtran executable")
	configFile := fs.String("c", "", "Path to a YAML configuration file")
	verbose := fs.Bool("v", false, "Verbose output")
	debug := fs.Bool("vv", false, "Debug output")
	showProgress := fs.Bool("progress", false, "Show live download progress")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: dezoom [options] <url> <output>

Reassemble a Zoomify tile set into a single lossless JPEG.
The URL is normally a page embedding a Zoomify viewer; with -b it is the
tile directory itself, with -l a local file listing one image per line.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	// Merge treats negative levels as "not set", so reject bad ones here.
	if *zoom < -1 {
		fmt.Fprintf(os.Stderr, "Error: -z must be -1 (finest) or non-negative\n")
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configFile != "" {
		fileCfg, err := config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = cfg.Merge(fileCfg)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg = cfg.Merge(config.Config{
		URL:          fs.Arg(0),
		Output:       fs.Arg(1),
		Base:         *base,
		List:         *list,
		ZoomLevel:    *zoom,
		Workers:      *workers,
		PersistTiles: *persist,
		SkipDownload: *skip,
		Jpegtran:     *jpegtran,
		Progress:     *showProgress,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	log := newLogger(*verbose, *debug)

	toolPath, err := compose.FindJpegtran(cfg.Jpegtran)
	if err != nil {
		if errors.Is(err, compose.ErrToolNotFound) {
			log.Error("jpegtran was not found; install libjpeg-turbo or point -j at the executable")
		} else {
			log.Errorf("jpegtran: %v", err)
		}
		return ExitToolNotFound
	}
	log.Debugf("using jpegtran at %s", toolPath)

	clientOpts := fetch.DefaultOptions()
	clientOpts.Timeout = cfg.Timeout

	runner := &untiler.Runner{
		Client:       fetch.NewClient(clientOpts),
		Tool:         &compose.Jpegtran{Path: toolPath},
		Log:          log,
		ShowProgress: cfg.Progress,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[dezoom] Received interrupt, shutting down...")
		cancel()
	}()

	if cfg.List {
		return runBatch(ctx, runner, cfg, log)
	}
	return runSingle(ctx, runner, cfg, cfg.URL, cfg.Output, log)
}

// runSingle reconstructs one image and maps failures to exit codes.
func runSingle(ctx context.Context, runner *untiler.Runner, cfg config.Config, url, output string, log *logrus.Logger) int {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		log.Errorf("create output directory: %v", err)
		return ExitOutputError
	}

	baseURL, err := runner.ResolveSource(ctx, url, cfg.Base)
	if err != nil {
		log.Errorf("%v", err)
		return ExitSourceError
	}

	outcome, err := runner.Run(ctx, untiler.RunContext{
		BaseURL:      baseURL,
		Output:       output,
		ZoomLevel:    cfg.ZoomLevel,
		Workers:      cfg.Workers,
		PersistTiles: cfg.PersistTiles,
		SkipDownload: cfg.SkipDownload,
	})
	if err != nil {
		log.Errorf("%v", err)
		return ExitGeneralError
	}

	log.Infof("saved image to %s (zoom level %d, %d/%d tiles)",
		output, outcome.Level, outcome.Joined, outcome.Expected)
	return ExitSuccess
}

// newLogger builds the process logger. Default level is warning so that a
// clean run prints nothing but the progress line.
func newLogger(verbose, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "15:04:05.000",
	})
	log.SetOutput(os.Stderr)

	switch {
	case debug:
		log.SetLevel(logrus.DebugLevel)
	case verbose:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
