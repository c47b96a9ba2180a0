package blocklist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/blocklisttest"
)

// newBlogEngine returns an engine with nested blog domains and no URLs.
func newBlogEngine() (e *blocklist.Engine) {
	return blocklist.NewEngine(map[string][]blocklist.Category{
		blocklisttest.DomainBlog:      {blocklisttest.CategoryBlog},
		blocklisttest.DomainAdultBlog: {blocklisttest.CategoryAdult},
	}, nil)
}

func TestEngine_Detect(t *testing.T) {
	t.Parallel()

	e := newBlogEngine()

	testCases := []struct {
		name      string
		candidate string
		want      []blocklist.Category
	}{{
		name:      "ancestor",
		candidate: "https://ujj.blogspot.com/things",
		want:      []blocklist.Category{blocklisttest.CategoryBlog},
	}, {
		name:      "exact_and_ancestor",
		candidate: "https://adultblog.blogspot.com/index.html",
		want: []blocklist.Category{
			blocklisttest.CategoryAdult,
			blocklisttest.CategoryBlog,
		},
	}, {
		name:      "deep_subdomain",
		candidate: "foo.adultblog.blogspot.com",
		want: []blocklist.Category{
			blocklisttest.CategoryAdult,
			blocklisttest.CategoryBlog,
		},
	}, {
		name:      "exact",
		candidate: "blogspot.com",
		want:      []blocklist.Category{blocklisttest.CategoryBlog},
	}, {
		name:      "not_a_label_boundary",
		candidate: "https://logspot.com/index.html",
		want:      nil,
	}, {
		name:      "suffix_without_dot",
		candidate: "myblogspot.com",
		want:      nil,
	}, {
		name:      "mailto",
		candidate: "mailto:foo@bar.baz",
		want:      nil,
	}, {
		name:      "empty",
		candidate: "",
		want:      nil,
	}, {
		name:      "garbage",
		candidate: "%%%",
		want:      nil,
	}, {
		name:      "case_and_trailing_dot",
		candidate: "HTTP://UJJ.BlogSpot.COM./",
		want:      []blocklist.Category{blocklisttest.CategoryBlog},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, e.Detect(tc.candidate))
		})
	}
}

func TestEngine_Detect_domainAndURL(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(map[string][]blocklist.Category{
		blocklisttest.DomainFoo: {blocklisttest.CategoryAdult},
	}, map[string][]blocklist.Category{
		blocklisttest.URLFoo: {blocklisttest.CategoryAdult},
	})

	got := e.Detect("https://foo.bar/baz")
	assert.Equal(t, []blocklist.Category{blocklisttest.CategoryAdult}, got)
}

func TestEngine_Detect_urlOnly(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(nil, map[string][]blocklist.Category{
		"example.com/bad":    {blocklisttest.CategoryGambling},
		"mailto:foo@bar.baz": {blocklisttest.CategoryAdult},
	})

	testCases := []struct {
		name      string
		candidate string
		want      []blocklist.Category
	}{{
		name:      "query_and_fragment",
		candidate: "https://example.com/bad?x=1#top",
		want:      []blocklist.Category{blocklisttest.CategoryGambling},
	}, {
		name:      "other_path",
		candidate: "https://example.com/good",
		want:      nil,
	}, {
		name:      "other_scheme",
		candidate: "http://example.com/bad",
		want:      nil,
	}, {
		name:      "opaque",
		candidate: "mailto:foo@bar.baz",
		want:      []blocklist.Category{blocklisttest.CategoryAdult},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, e.Detect(tc.candidate))
		})
	}
}

func TestEngine_Detect_topLevel(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(map[string][]blocklist.Category{
		"com": {blocklisttest.CategoryGambling},
	}, nil)

	assert.Nil(t, e.Detect("example.com"))
	assert.Nil(t, e.Detect("a.b.example.com"))

	// The top-level domain itself is still matched exactly.
	assert.Equal(t, []blocklist.Category{blocklisttest.CategoryGambling}, e.Detect("com"))
}

func TestEngine_Detect_ip(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(map[string][]blocklist.Category{
		"2.3.4":   {blocklisttest.CategoryGambling},
		"1.2.3.4": {blocklisttest.CategoryAdult},
	}, nil)

	assert.Equal(t, []blocklist.Category{blocklisttest.CategoryAdult}, e.Detect("http://1.2.3.4/"))
	assert.Nil(t, e.Detect("9.2.3.4"))
}

func TestEngine_Detect_duplicates(t *testing.T) {
	t.Parallel()

	b := blocklist.NewBuilder()
	for range 3 {
		assert.True(t, b.AddDomain(blocklisttest.CategoryAdult, "example.org"))
	}

	assert.True(t, b.AddDomain(blocklisttest.CategoryBlog, "sub.example.org"))
	assert.True(t, b.AddURL(blocklisttest.CategoryAdult, "sub.example.org/"))

	e := b.Engine()

	want := []blocklist.Category{blocklisttest.CategoryAdult, blocklisttest.CategoryBlog}
	assert.Equal(t, want, e.Detect("https://sub.example.org"))
}

func TestEngine_Detect_idempotent(t *testing.T) {
	t.Parallel()

	e := newBlogEngine()

	const candidate = "https://adultblog.blogspot.com/index.html"

	first := e.Detect(candidate)
	second := e.Detect(candidate)
	assert.Equal(t, first, second)
}

func TestEngine_nil(t *testing.T) {
	t.Parallel()

	var e *blocklist.Engine

	assert.Nil(t, e.Detect("example.com"))
	assert.False(t, e.Match("example.com"))

	domains, urls := e.Len()
	assert.Zero(t, domains)
	assert.Zero(t, urls)

	assert.NotNil(t, e.Stats())
}

func TestEngine_Match(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(map[string][]blocklist.Category{
		blocklisttest.DomainBlog: {blocklisttest.CategoryBlog},
	}, map[string][]blocklist.Category{
		"example.com/bad": {blocklisttest.CategoryGambling},
	})

	assert.True(t, e.Match("www.blogspot.com"))
	assert.True(t, e.Match("blogspot.com"))
	assert.True(t, e.Match("example.com/bad?q"))
	assert.False(t, e.Match("example.com/good"))
	assert.False(t, e.Match("logspot.com"))
	assert.False(t, e.Match("mailto:foo@blogspot.com"))
}

func TestEngine_Len(t *testing.T) {
	t.Parallel()

	e := blocklist.NewEngine(map[string][]blocklist.Category{
		"example.com":  {blocklisttest.CategoryAdult},
		"EXAMPLE.com.": {blocklisttest.CategoryBlog},
		"mailto:x@y.z": {blocklisttest.CategoryBlog},
	}, map[string][]blocklist.Category{
		"example.com/a": {blocklisttest.CategoryAdult},
	})

	domains, urls := e.Len()
	assert.Equal(t, 1, domains)
	assert.Equal(t, 1, urls)

	assert.Equal(t, 1, e.Stats().Skipped)
}

func BenchmarkEngine_Detect(b *testing.B) {
	e := newBlogEngine()

	const candidate = "https://a.b.c.adultblog.blogspot.com/index.html?q=1"

	var cats []blocklist.Category

	b.ReportAllocs()
	for b.Loop() {
		cats = e.Detect(candidate)
	}

	assert.Len(b, cats, 2)
}
