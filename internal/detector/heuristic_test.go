package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/ogimage/internal/imagefetch"
)

func ok(body string) imagefetch.FetchResponse {
	return imagefetch.FetchResponse{StatusCode: 200, Body: []byte(body)}
}

func TestClientRenderedEmptyBody(t *testing.T) {
	t.Parallel()

	require.True(t, NewHeuristic(100).ClientRendered(ok("")))
}

func TestClientRenderedSPAMarkers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100)
	require.True(t, h.ClientRendered(ok(`<div id="__next"></div>`)))
	require.True(t, h.ClientRendered(ok(`<script>window.__APOLLO_STATE__={}</script>`+strings.Repeat("x", 500))))
}

func TestClientRenderedScriptDensity(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(1000)
	require.True(t, h.ClientRendered(ok(`<html><script>var a=1;</script><p>t</p></html>`)))
	require.True(t, h.ClientRendered(ok(`<html><p>t</p><script src="x.js"`)))
}

func TestClientRenderedServerRenderedPage(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Lip Butter Balm</title></head><body>` +
		strings.Repeat("<p>Hydrating balm with shea butter.</p>", 80) +
		`<script>track()</script></body></html>`
	require.False(t, NewHeuristic(0).ClientRendered(ok(page)))
}

func TestClientRenderedIgnoresNon2xx(t *testing.T) {
	t.Parallel()

	resp := imagefetch.FetchResponse{StatusCode: 404, Body: []byte("not found")}
	require.False(t, NewHeuristic(100).ClientRendered(resp))
}

func TestNewHeuristicDefaultThreshold(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultBodyLengthThreshold, NewHeuristic(0).BodyLengthThreshold)
}
