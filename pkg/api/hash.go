package api

import (
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash over everything a rendered article page
// depends on: both language variants, slug, cover, tag slugs (sorted) and UpdatedAt.
// It is used as the article ETag.
func (p Post) Hash() string {
	h := blake3.New()
	field := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	field(p.ID)
	field(p.Slug)
	field(p.TitleEN)
	field(p.TitleAR)
	field(p.ExcerptEN)
	field(p.ExcerptAR)
	field(p.ContentEN)
	field(p.ContentAR)
	field(p.CoverImage)

	slugs := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		slugs = append(slugs, strings.ToLower(t.Slug))
	}
	sort.Strings(slugs)
	for _, s := range slugs {
		field(s)
	}
	_, _ = h.Write([]byte{0}) // end of tags

	if !p.UpdatedAt.IsZero() {
		_, _ = h.Write([]byte(p.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	}

	return hex.EncodeToString(h.Sum(nil))
}
