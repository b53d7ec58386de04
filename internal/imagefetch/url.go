package imagefetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL reports a product URL without a scheme or host.
var ErrInvalidURL = errors.New("invalid URL")

// ValidateProductURL ensures rawURL is absolute, with both scheme and host.
func ValidateProductURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q: missing scheme or host", ErrInvalidURL, rawURL)
	}
	return nil
}

// ResolveImageURL turns an image reference into an absolute URL.
// References that already carry an http(s) scheme are returned unchanged; anything
// else is resolved against the scheme and host of baseURL, ignoring its path.
func ResolveImageURL(ref, baseURL string) (string, error) {
	if ref == "" {
		return "", nil
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image reference: %w", err)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	return root.ResolveReference(refURL).String(), nil
}
