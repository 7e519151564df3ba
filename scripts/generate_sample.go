//go:build ignore

// Generates a large seed file for exercising paging and export:
//
//	go run scripts/generate_sample.go > sample.yaml
//	mudawwana seed --file sample.yaml
package main

import (
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/mudawwana/internal/seed"
	"github.com/mithrel/mudawwana/pkg/api"
)

func main() {
	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	f := seed.File{
		Authors: []api.Author{{ID: "sample-author", Name: "Sample Author"}},
	}
	for i := 1; i <= 5; i++ {
		f.Categories = append(f.Categories, api.Category{
			ID:     fmt.Sprintf("sample-cat-%d", i),
			Slug:   fmt.Sprintf("sample-category-%d", i),
			NameEN: fmt.Sprintf("Sample Category %d", i),
			NameAR: fmt.Sprintf("تصنيف تجريبي %d", i),
		})
	}
	tags := make([]string, 20)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%02d", i+1)
		f.Tags = append(f.Tags, api.Tag{
			ID:     "sample-" + tags[i],
			Slug:   tags[i],
			NameEN: tags[i],
			NameAR: fmt.Sprintf("وسم%02d", i+1),
		})
	}

	const total = 500
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < total; i++ {
		// Stagger timestamps backwards to look natural
		created := base.Add(-time.Duration(30*i+mr.Intn(60)) * time.Minute)
		f.Posts = append(f.Posts, seed.Post{
			ID:        fmt.Sprintf("sample-post-%03d", i+1),
			Slug:      fmt.Sprintf("sample-post-%03d", i+1),
			TitleEN:   fmt.Sprintf("Sample Post %03d", i+1),
			TitleAR:   fmt.Sprintf("مقالة تجريبية %03d", i+1),
			ContentEN: body(mr, i+1),
			Category:  f.Categories[mr.Intn(len(f.Categories))].Slug,
			Author:    "sample-author",
			Tags:      sampleTags(mr, tags, 1+mr.Intn(4)),
			Draft:     mr.Float64() < 0.1,
			Featured:  mr.Float64() < 0.05,
			CreatedAt: created,
		})
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		panic(err)
	}
}

// body mixes every block kind so rendered output covers the whole rule table.
func body(r *mrand.Rand, n int) string {
	parts := []string{
		fmt.Sprintf("## Part %d", n),
		strings.Repeat("Some **bold** and *italic* prose with `code`. ", 1+r.Intn(40)),
		"- first point\n- second point",
		"> A quoted line.",
		"```go\nfmt.Println(" + fmt.Sprint(n) + ")\n```",
	}
	r.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })
	return strings.Join(parts, "\n\n")
}

func sampleTags(r *mrand.Rand, pool []string, k int) []string {
	if k >= len(pool) {
		k = len(pool)
	}
	idx := r.Perm(len(pool))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
