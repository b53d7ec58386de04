package cache

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const balmURL = "https://www.sephora.com/product/summer-fridays-lip-butter-balm-P455936"

const cacheJSON = `{
  "https://www.sephora.com/product/rare-beauty-blush-P497490": "https://img.example.com/blush.jpg",
  "summer-fridays-lip-butter-balm-P455936": "https://img.example.com/balm.jpg",
  "https://www.sephora.com/product/glow-recipe-toner": "https://img.example.com/toner.jpg"
}`

func TestParsePreservesOrder(t *testing.T) {
	t.Parallel()

	entries, err := Parse([]byte(`{"b":"2","a":"1","c":3}`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"b", "2"}, {"a", "1"}, {"c", "3"}}, entries)
}

func TestParseRejectsNonObjects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{``, `not json`, `["a","b"]`, `"x"`, `{"a":`} {
		_, err := Parse([]byte(raw))
		require.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	entries, err := Parse([]byte(cacheJSON))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		url        string
		firstEntry bool
		want       string
		kind       MatchKind
	}{
		{
			name: "product id in key",
			url:  balmURL,
			want: "https://img.example.com/balm.jpg",
			kind: MatchProductID,
		},
		{
			name: "product id is case insensitive",
			url:  "https://www.sephora.com/product/anything-p497490?skuId=1",
			want: "https://img.example.com/blush.jpg",
			kind: MatchProductID,
		},
		{
			name: "url contains key",
			url:  "https://WWW.sephora.com/product/glow-recipe-toner?icid2=x",
			want: "https://img.example.com/toner.jpg",
			kind: MatchSubstring,
		},
		{
			name: "key contains url",
			url:  "glow-recipe",
			want: "https://img.example.com/toner.jpg",
			kind: MatchSubstring,
		},
		{
			name: "unknown id falls through to substring rule",
			url:  "https://www.sephora.com/product/glow-recipe-toner-P123456",
			want: "https://img.example.com/toner.jpg",
			kind: MatchSubstring,
		},
		{
			name: "miss is explicit by default",
			url:  "https://www.ulta.com/p/unknown",
			want: "",
			kind: MatchNone,
		},
		{
			name:       "first entry when enabled",
			url:        "https://www.ulta.com/p/unknown",
			firstEntry: true,
			want:       "https://img.example.com/blush.jpg",
			kind:       MatchFirstEntry,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, kind := Match(entries, tc.url, tc.firstEntry)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestMatchIgnoresEmptyKeysAndEmptyCache(t *testing.T) {
	t.Parallel()

	got, kind := Match([]Entry{{Key: "", Value: "https://img.example.com/x.jpg"}}, "https://example.com/p", false)
	assert.Empty(t, got)
	assert.Equal(t, MatchNone, kind)

	got, kind = Match(nil, balmURL, true)
	assert.Empty(t, got)
	assert.Equal(t, MatchNone, kind)
}

func TestLookupUsesFirstExistingCandidate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/sephora_image_urls.json", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/sephora_image_urls.json", []byte(cacheJSON), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/other/sephora_image_urls.json", []byte(`{"P455936":"https://img.example.com/wrong.jpg"}`), 0o644))

	l := New(fs, Config{Candidates: []string{
		"",
		"/missing/sephora_image_urls.json",
		"/work/sephora_image_urls.json",
		"/repo/sephora_image_urls.json",
		"/other/sephora_image_urls.json",
	}}, nil)

	path, ok := l.Find()
	require.True(t, ok)
	assert.Equal(t, "/repo/sephora_image_urls.json", path)
	assert.Equal(t, "https://img.example.com/balm.jpg", l.Lookup(balmURL))
}

func TestLookupMisses(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{broken`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/empty.json", []byte(`{}`), 0o644))

	assert.Empty(t, New(fs, Config{}, nil).Lookup(balmURL), "no candidates")
	assert.Empty(t, New(fs, Config{Candidates: []string{"/nope.json"}}, nil).Lookup(balmURL), "no file")
	assert.Empty(t, New(fs, Config{Candidates: []string{"/bad.json"}}, nil).Lookup(balmURL), "malformed")
	assert.Empty(t, New(fs, Config{Candidates: []string{"/empty.json"}, FirstEntryFallback: true}, nil).Lookup(balmURL), "empty")
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	name := DefaultFileName
	got := Candidates(name, "/etc/ogimage/cache.json", "/home/u/proj/docs", "/home/u/proj/bin", 5)
	want := []string{
		"/etc/ogimage/cache.json",
		filepath.Join("/home/u/proj/docs", name),
		filepath.Join("/home/u/proj", name),
		filepath.Join("/home/u/proj/bin", name),
		filepath.Join("/home/u", name),
		filepath.Join("/home", name),
		filepath.Join("/", name),
	}
	assert.Equal(t, want, got)
}

func TestCandidatesLimitsAncestors(t *testing.T) {
	t.Parallel()

	got := Candidates("c.json", "", "", "/a/b/c/d/e/f/g", 2)
	assert.Equal(t, []string{"/a/b/c/d/e/f/g/c.json", "/a/b/c/d/e/f/c.json", "/a/b/c/d/e/c.json"}, got)

	assert.Empty(t, Candidates("c.json", "", "", "", 5))
}
