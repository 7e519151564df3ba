package cli

import (
	"context"

	"github.com/mithrel/mudawwana/internal/present"
	"github.com/mithrel/mudawwana/pkg/api"
)

// streamPosts pages through fetch until the last page and hands each batch
// to w. It stops early on an empty page so a shrinking table cannot loop.
func streamPosts(ctx context.Context, pageSize int, fetch func(ctx context.Context, page, perPage int) (api.PostPage, error), w present.PostStreamWriter) error {
	if pageSize <= 0 {
		pageSize = 200
	}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := fetch(ctx, page, pageSize)
		if err != nil {
			return err
		}
		if len(res.Data) == 0 {
			break
		}
		if err := w.WritePosts(res.Data); err != nil {
			return err
		}
		if !res.HasNext() {
			break
		}
	}
	return w.Close()
}
