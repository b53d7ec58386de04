package imagefetch

import (
	"net/http"
	"time"
)

// Source names the stage that produced the final image URL.
type Source string

// Source values reported on Result.
const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// State is a node of the resolution state machine.
type State string

// States entered by Resolver.Resolve, in order.
const (
	StateLiveFetch   State = "live_fetch"
	StateCacheLookup State = "cache_lookup"
	StateFallback    State = "fallback"
	StateDone        State = "done"
)

// DefaultFallbackImageURL is used when neither the live page nor the cache yields an image.
const DefaultFallbackImageURL = "http://summerfridays.com/cdn/shop/files/Square-Lip-Butter-Balm-Vanilla-Main_1024x1024.jpg?v=1716507861"

// FetchRequest captures everything needed to fetch a product page.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the raw page returned by a Fetcher.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Result is the outcome of one resolution run.
type Result struct {
	ProductURL    string
	ImageURL      string
	Source        Source
	FetchDuration time.Duration
	// PageHash is the digest of the live page body, empty when nothing was fetched.
	PageHash string
	// ClientRendered is set when the live page had no og:image and looked like
	// an app shell that renders its metadata in the browser.
	ClientRendered bool
}
