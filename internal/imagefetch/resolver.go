package imagefetch

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// Stage outcome labels passed to Recorder.ObserveStage.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
	OutcomeUsed = "used"
)

// Config wires collaborators into a Resolver. A nil Fetcher or Cache skips that
// stage; other nil collaborators fall back to no-op or system defaults.
type Config struct {
	Fetcher          Fetcher
	Cache            CacheLookup
	Detector         ShellDetector
	Hasher           Hasher
	Clock            Clock
	Recorder         Recorder
	Reporter         Reporter
	Logger           *zap.Logger
	FallbackImageURL string
}

// Resolver runs the live fetch -> cache -> fallback chain for one product URL.
type Resolver struct {
	fetcher  Fetcher
	cache    CacheLookup
	detector ShellDetector
	hasher   Hasher
	clock    Clock
	recorder Recorder
	reporter Reporter
	logger   *zap.Logger
	fallback string
}

// NewResolver builds a Resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		fetcher:  cfg.Fetcher,
		cache:    cfg.Cache,
		detector: cfg.Detector,
		hasher:   cfg.Hasher,
		clock:    cfg.Clock,
		recorder: cfg.Recorder,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
		fallback: cfg.FallbackImageURL,
	}
	if r.clock == nil {
		r.clock = systemClock{}
	}
	if r.recorder == nil {
		r.recorder = nopRecorder{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.fallback == "" {
		r.fallback = DefaultFallbackImageURL
	}
	return r
}

// Resolve returns the preview image URL for productURL. Fetch, parse, and cache
// failures never surface as errors; they move the chain to its next stage.
func (r *Resolver) Resolve(ctx context.Context, productURL string) (Result, error) {
	if err := ValidateProductURL(productURL); err != nil {
		return Result{}, err
	}
	result := Result{ProductURL: productURL}
	log := r.logger.With(zap.String("product_url", productURL))

	r.enter(StateLiveFetch)
	imageURL := r.live(ctx, productURL, &result, log)
	if imageURL != "" {
		r.recorder.ObserveStage(StateLiveFetch, OutcomeHit)
		result.ImageURL = imageURL
		result.Source = SourceLive
		r.enter(StateDone)
		return result, nil
	}
	r.recorder.ObserveStage(StateLiveFetch, OutcomeMiss)

	r.enter(StateCacheLookup)
	if r.cache != nil {
		if cached := r.cache.Lookup(productURL); cached != "" {
			log.Info("Using cached image", zap.String("image_url", cached))
			r.recorder.ObserveStage(StateCacheLookup, OutcomeHit)
			result.ImageURL = cached
			result.Source = SourceCache
			r.enter(StateDone)
			return result, nil
		}
	}
	r.recorder.ObserveStage(StateCacheLookup, OutcomeMiss)

	r.enter(StateFallback)
	log.Info("Using fallback image", zap.String("image_url", r.fallback))
	r.recorder.ObserveStage(StateFallback, OutcomeUsed)
	result.ImageURL = r.fallback
	result.Source = SourceFallback
	r.enter(StateDone)
	return result, nil
}

// live performs the single fetch and returns an absolute image URL, or "".
func (r *Resolver) live(ctx context.Context, productURL string, result *Result, log *zap.Logger) string {
	if r.fetcher == nil {
		return ""
	}
	start := r.clock.Now()
	resp, err := r.fetcher.Fetch(ctx, FetchRequest{URL: productURL})
	result.FetchDuration = r.clock.Now().Sub(start)
	if err != nil {
		log.Warn("Live fetch failed", zap.Error(err), zap.Int("status", resp.StatusCode))
		r.recorder.ObserveFetch(productURL, statusLabel(resp.StatusCode, err), 0, result.FetchDuration)
		return ""
	}
	r.recorder.ObserveFetch(productURL, statusLabel(resp.StatusCode, nil), len(resp.Body), result.FetchDuration)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Live fetch returned non-success status", zap.Int("status", resp.StatusCode))
		return ""
	}

	if r.hasher != nil {
		sum, err := r.hasher.Hash(resp.Body)
		if err != nil {
			log.Debug("Could not hash page body", zap.Error(err))
		} else {
			result.PageHash = sum
			log = log.With(zap.String("page_hash", sum))
		}
	}

	ref := ExtractOGImage(resp.Body)
	if ref == "" {
		if r.detector != nil && r.detector.ClientRendered(resp) {
			result.ClientRendered = true
			log.Warn("No og:image tag; page looks client-rendered", zap.Int("bytes", len(resp.Body)))
			return ""
		}
		log.Info("No og:image tag on page", zap.Int("bytes", len(resp.Body)))
		return ""
	}
	imageURL, err := ResolveImageURL(ref, productURL)
	if err != nil {
		log.Warn("Unusable og:image reference", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	log.Info("Extracted og:image", zap.String("image_url", imageURL), zap.Duration("duration", result.FetchDuration))
	return imageURL
}

func (r *Resolver) enter(state State) {
	r.logger.Debug("Entering state", zap.String("state", string(state)))
	if r.reporter != nil {
		r.reporter.Enter(state)
	}
}

// statusLabel maps a status code to its class ("2xx", "4xx", ...) or "error".
func statusLabel(code int, err error) string {
	if code <= 0 {
		if err != nil {
			return "error"
		}
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
