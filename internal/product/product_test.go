package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/ogimage/internal/imagefetch"
)

type staticSource struct {
	link  string
	calls int
}

func (s *staticSource) FirstLink() (string, bool) {
	s.calls++
	return s.link, s.link != ""
}

func TestResolveArgumentWins(t *testing.T) {
	t.Parallel()

	src := &staticSource{link: "https://shop.example.com/from-dataset"}
	target, err := Resolve([]string{"https://shop.example.com/from-arg"}, src, "")
	require.NoError(t, err)
	assert.Equal(t, Target{URL: "https://shop.example.com/from-arg", Origin: OriginArgument}, target)
	assert.Zero(t, src.calls, "dataset is only read without an argument")
}

func TestResolveDataset(t *testing.T) {
	t.Parallel()

	target, err := Resolve(nil, &staticSource{link: "https://shop.example.com/from-dataset"}, "")
	require.NoError(t, err)
	assert.Equal(t, OriginDataset, target.Origin)
	assert.Equal(t, "https://shop.example.com/from-dataset", target.URL)
}

func TestResolveDefault(t *testing.T) {
	t.Parallel()

	target, err := Resolve(nil, &staticSource{}, "")
	require.NoError(t, err)
	assert.Equal(t, Target{URL: DefaultURL, Origin: OriginDefault}, target)

	target, err = Resolve(nil, nil, "https://shop.example.com/configured")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/configured", target.URL)
}

func TestResolveRejectsInvalidURLs(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"", "sephora.com/product/x", "/product/x", "https://"} {
		_, err := Resolve([]string{arg}, nil, "")
		require.ErrorIs(t, err, imagefetch.ErrInvalidURL, arg)
	}
}
