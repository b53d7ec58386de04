package imagefetch

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// CacheLookup returns a previously recorded image URL for a product page, or "".
type CacheLookup interface {
	Lookup(productURL string) string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Hasher produces a digest of the fetched page body.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// ShellDetector reports whether a page is a client-rendered app shell.
type ShellDetector interface {
	ClientRendered(resp FetchResponse) bool
}

// Recorder receives stage outcomes and fetch observations.
type Recorder interface {
	ObserveStage(stage State, outcome string)
	ObserveFetch(rawURL string, status string, bytesFetched int, duration time.Duration)
}

// Reporter is notified each time the resolver enters a new state.
type Reporter interface {
	Enter(state State)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(State)

// Enter calls f(state).
func (f ReporterFunc) Enter(state State) {
	f(state)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(State, string)                      {}
func (nopRecorder) ObserveFetch(string, string, int, time.Duration) {}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
