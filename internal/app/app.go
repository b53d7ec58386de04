// Package app wires configuration into the resolution pipeline and runs it
// once, printing progress for the person at the terminal.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/JakeFAU/ogimage/internal/browser"
	"github.com/JakeFAU/ogimage/internal/cache"
	"github.com/JakeFAU/ogimage/internal/config"
	"github.com/JakeFAU/ogimage/internal/dataset"
	"github.com/JakeFAU/ogimage/internal/detector"
	collyfetcher "github.com/JakeFAU/ogimage/internal/fetcher/colly"
	"github.com/JakeFAU/ogimage/internal/hash/sha256"
	"github.com/JakeFAU/ogimage/internal/imagefetch"
	"github.com/JakeFAU/ogimage/internal/metrics"
	"github.com/JakeFAU/ogimage/internal/product"
)

const rule = "============================================================"

// Deps are the side-effecting collaborators. Zero values are replaced with
// the real implementations selected by configuration.
type Deps struct {
	FS       afero.Fs
	Fetcher  imagefetch.Fetcher
	Opener   browser.Opener
	Clock    imagefetch.Clock
	Registry *prometheus.Registry
	WorkDir  string
	ExecDir  string
}

// App holds the services for a single run.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	fetcher  imagefetch.Fetcher
	opener   browser.Opener
	clock    imagefetch.Clock
	registry *prometheus.Registry
	recorder *metrics.Recorder
	dataset  *dataset.Loader
	cache    *cache.Lookup
}

// New builds an App from cfg, filling unset deps from the host.
func New(cfg config.Config, logger *zap.Logger, deps Deps) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Fetcher == nil {
		deps.Fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		})
	}
	if deps.Opener == nil {
		if cfg.Browser.Enabled {
			deps.Opener = browser.NewSystem(cfg.BrowserTimeout())
		} else {
			deps.Opener = browser.Noop{}
		}
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			deps.WorkDir = wd
		}
	}
	if deps.ExecDir == "" {
		if exe, err := os.Executable(); err == nil {
			deps.ExecDir = filepath.Dir(exe)
		}
	}

	recorder, err := metrics.New(deps.Registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	candidates := cache.Candidates(cfg.Cache.FileName, cfg.Cache.Path, deps.WorkDir, deps.ExecDir, cfg.Cache.MaxAncestors)
	logger.Debug("Cache search path", zap.Strings("candidates", candidates))

	return &App{
		cfg:      cfg,
		logger:   logger,
		fetcher:  deps.Fetcher,
		opener:   deps.Opener,
		clock:    deps.Clock,
		registry: deps.Registry,
		recorder: recorder,
		dataset:  dataset.NewLoader(deps.FS, cfg.Dataset.Path, cfg.Dataset.LinkColumn, logger),
		cache: cache.New(deps.FS, cache.Config{
			Candidates:         candidates,
			FirstEntryFallback: cfg.Cache.FirstEntryFallback,
		}, logger),
	}, nil
}

// Run resolves the image for the product named by args (at most one URL) and
// tries to open it. Only an unusable product URL is returned as an error.
func (a *App) Run(ctx context.Context, args []string, out io.Writer) (imagefetch.Result, error) {
	target, err := product.Resolve(args, a.dataset, a.cfg.Product.DefaultURL)
	if err != nil {
		fmt.Fprintln(out, "Invalid URL.")
		a.logger.Error("Invalid product URL", zap.String("url", target.URL), zap.String("origin", string(target.Origin)))
		return imagefetch.Result{}, err
	}
	log := a.logger.With(zap.String("product_url", target.URL))
	log.Info("Resolved product URL", zap.String("origin", string(target.Origin)))

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Product Image Fetch Demo")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "\nProduct URL: %s\n", target.URL)
	fmt.Fprintln(out, "\nFetching page (colly)...")
	fmt.Fprint(out, "Extracting og:image (regexp)...\n\n")

	resolver := imagefetch.NewResolver(imagefetch.Config{
		Fetcher:          a.fetcher,
		Cache:            a.cache,
		Detector:         detector.NewHeuristic(a.cfg.Detector.MinHTMLBytes),
		Hasher:           sha256.New(),
		Clock:            a.clock,
		Recorder:         a.recorder,
		Reporter:         progressReporter(out),
		Logger:           log,
		FallbackImageURL: a.cfg.Fallback.ImageURL,
	})
	result, err := resolver.Resolve(ctx, target.URL)
	if err != nil {
		fmt.Fprintln(out, "Invalid URL.")
		return result, err
	}
	log.Info("Resolved image URL",
		zap.String("image_url", result.ImageURL),
		zap.String("source", string(result.Source)))

	if result.ClientRendered {
		fmt.Fprintln(out, "(The product page looks client-rendered; its og:image may only appear after JavaScript runs.)")
	}
	fmt.Fprintf(out, "Image URL: %s\n", result.ImageURL)
	fmt.Fprintln(out, "\nOpening image in browser...")
	if err := a.opener.Open(ctx, result.ImageURL); err != nil {
		if errors.Is(err, browser.ErrDisabled) {
			fmt.Fprintln(out, "(Browser launch disabled.)")
		} else {
			log.Warn("Could not open browser", zap.Error(err))
			fmt.Fprintln(out, "(Could not open automatically.)")
		}
	}
	fmt.Fprintln(out, "\nIf the image did not open, copy the URL above and paste it in your browser.")
	fmt.Fprintln(out, "Done.")

	a.writeMetrics()
	return result, nil
}

func (a *App) writeMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path, a.registry); err != nil {
		a.logger.Warn("Failed to write metrics", zap.String("path", path), zap.Error(err))
		return
	}
	a.logger.Debug("Wrote metrics", zap.String("path", path))
}

// progressReporter prints the fallback transitions the way a person following
// along expects to read them.
func progressReporter(out io.Writer) imagefetch.Reporter {
	return imagefetch.ReporterFunc(func(state imagefetch.State) {
		switch state {
		case imagefetch.StateCacheLookup:
			fmt.Fprint(out, "Direct fetch failed (e.g. 403). Using cached image from pipeline...\n\n")
		case imagefetch.StateFallback:
			fmt.Fprintln(out, "No image found in cache. Using fallback demo image...")
		}
	})
}
