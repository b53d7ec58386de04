package imagefetch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProductURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://www.sephora.com/product/summer-fridays-lip-butter-balm-P455936",
		"http://localhost:8080/p",
	}
	for _, raw := range valid {
		require.NoError(t, ValidateProductURL(raw), raw)
	}

	invalid := []string{
		"",
		"not a url",
		"/product/x",
		"www.example.com/product",
		"https://",
		"http://%zz",
	}
	for _, raw := range invalid {
		err := ValidateProductURL(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidURL), raw)
	}
}

func TestResolveImageURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		ref  string
		base string
		want string
	}{
		{"empty", "", "https://example.com/product/x", ""},
		{"absolute https is identity", "https://cdn.example.com/a.jpg?v=1", "https://example.com/product/x", "https://cdn.example.com/a.jpg?v=1"},
		{"absolute http is identity", "http://cdn.example.com/a.jpg", "https://example.com/product/x", "http://cdn.example.com/a.jpg"},
		{"uppercase scheme is identity", "HTTPS://cdn.example.com/a.jpg", "https://example.com/product/x", "HTTPS://cdn.example.com/a.jpg"},
		{"site relative", "/images/foo.jpg", "https://example.com/product/x", "https://example.com/images/foo.jpg"},
		{"base path ignored", "images/foo.jpg", "https://example.com/product/x/y", "https://example.com/images/foo.jpg"},
		{"protocol relative", "//cdn.example.com/b.jpg", "https://example.com/product/x", "https://cdn.example.com/b.jpg"},
		{"keeps port", "/i.png", "http://127.0.0.1:8080/p/1", "http://127.0.0.1:8080/i.png"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveImageURL(tc.ref, tc.base)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveImageURLRejectsBrokenReference(t *testing.T) {
	t.Parallel()

	_, err := ResolveImageURL("/%zz", "https://example.com/product/x")
	require.Error(t, err)
}
