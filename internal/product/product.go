// Package product decides which product page URL a run targets.
package product

import (
	"github.com/JakeFAU/ogimage/internal/imagefetch"
)

// DefaultURL is used when neither an argument nor the dataset supplies a link.
const DefaultURL = "https://www.sephora.com/product/summer-fridays-lip-butter-balm-P455936"

// Origin records where the target URL came from.
type Origin string

// Origin values.
const (
	OriginArgument Origin = "argument"
	OriginDataset  Origin = "dataset"
	OriginDefault  Origin = "default"
)

// LinkSource supplies a product link, typically the first row of the dataset.
type LinkSource interface {
	FirstLink() (string, bool)
}

// Target is the validated product URL for a run.
type Target struct {
	URL    string
	Origin Origin
}

// Resolve picks the product URL: the first positional argument when present,
// else the first dataset link, else defaultURL (DefaultURL when empty). The
// chosen URL must be absolute; otherwise imagefetch.ErrInvalidURL is returned.
func Resolve(args []string, source LinkSource, defaultURL string) (Target, error) {
	target := pick(args, source, defaultURL)
	if err := imagefetch.ValidateProductURL(target.URL); err != nil {
		return target, err
	}
	return target, nil
}

func pick(args []string, source LinkSource, defaultURL string) Target {
	if len(args) > 0 {
		return Target{URL: args[0], Origin: OriginArgument}
	}
	if source != nil {
		if link, ok := source.FirstLink(); ok {
			return Target{URL: link, Origin: OriginDataset}
		}
	}
	if defaultURL == "" {
		defaultURL = DefaultURL
	}
	return Target{URL: defaultURL, Origin: OriginDefault}
}
