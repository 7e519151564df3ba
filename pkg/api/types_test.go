package api

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLanguageSelectors(t *testing.T) {
	p := Post{TitleEN: "Title", TitleAR: "عنوان", ContentEN: "Body", ContentAR: ""}

	assert.Equal(t, "Title", p.Title(LangEN))
	assert.Equal(t, "عنوان", p.Title(LangAR))
	// Missing Arabic falls back to English.
	assert.Equal(t, "Body", p.Content(LangAR))
}

func TestPostExcerpt(t *testing.T) {
	long := strings.Repeat("ب", ExcerptRunes+20)
	p := Post{ContentAR: long, ContentEN: "short"}

	assert.Equal(t, "short", p.Excerpt(LangEN))
	ex := p.Excerpt(LangAR)
	require.True(t, strings.HasSuffix(ex, "..."))
	assert.Equal(t, ExcerptRunes, len([]rune(strings.TrimSuffix(ex, "..."))))

	p.ExcerptEN = "  explicit  "
	assert.Equal(t, "explicit", p.Excerpt(LangEN))
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{}.Normalize(6)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 6, q.PerPage)
	assert.Equal(t, 0, q.Offset())

	q = ListQuery{Page: 3, PerPage: 1000}.Normalize(6)
	assert.Equal(t, 100, q.PerPage)
	assert.Equal(t, 200, q.Offset())

	q = ListQuery{Page: math.MaxInt, PerPage: 100}.Normalize(6)
	assert.Equal(t, MaxPage, q.Page)
	assert.Positive(t, q.Offset())
}

func TestPostPageTotals(t *testing.T) {
	p := PostPage{Total: 11, Page: 2, PerPage: 5}
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())

	empty := PostPage{Page: 1, PerPage: 5}
	assert.Equal(t, 1, empty.TotalPages())
	assert.False(t, empty.HasNext())
}

func TestParseLangAndMatch(t *testing.T) {
	l, ok := ParseLang("AR")
	require.True(t, ok)
	assert.Equal(t, LangAR, l)

	l, ok = ParseLang("en-GB")
	require.True(t, ok)
	assert.Equal(t, LangEN, l)

	_, ok = ParseLang("fr")
	assert.False(t, ok)
	_, ok = ParseLang("")
	assert.False(t, ok)

	assert.Equal(t, LangAR, MatchLang("ar-EG,ar;q=0.9,en;q=0.5", LangEN))
	assert.Equal(t, LangEN, MatchLang("en-US,en;q=0.9", LangAR))
	assert.Equal(t, LangAR, MatchLang("", LangAR))
	assert.Equal(t, "rtl", LangAR.Dir())
	assert.Equal(t, LangEN, LangAR.Other())
}

func TestParseReaction(t *testing.T) {
	r, ok := ParseReaction(" UP ")
	require.True(t, ok)
	assert.Equal(t, ReactionUp, r)
	_, ok = ParseReaction("sideways")
	assert.False(t, ok)
}
