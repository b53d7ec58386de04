// Package imagefetch resolves the preview image of a product page.
//
// Resolution is a one-shot fallback chain:
//
//	START -> LIVE_FETCH {hit -> DONE, miss -> CACHE_LOOKUP}
//	      -> CACHE_LOOKUP {hit -> DONE, miss -> FALLBACK}
//	      -> FALLBACK -> DONE
//
// Every stage absorbs its own failures and hands control to the next one. The
// only error Resolve returns is ErrInvalidURL for an unusable product URL.
// Collaborators (fetcher, cache, clock, metrics) are injected through the
// interfaces in interfaces.go so the chain can be exercised without a network
// or filesystem.
package imagefetch
