package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/mithrel/mudawwana/pkg/api"
)

type recordingWriter struct {
	batches [][]api.Post
	closed  bool
}

func (w *recordingWriter) WritePosts(p []api.Post) error {
	w.batches = append(w.batches, p)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func pagedFetch(total int, calls *int) func(context.Context, int, int) (api.PostPage, error) {
	return func(_ context.Context, page, perPage int) (api.PostPage, error) {
		*calls++
		start := (page - 1) * perPage
		var data []api.Post
		for i := start; i < start+perPage && i < total; i++ {
			data = append(data, api.Post{Slug: string(rune('a' + i))})
		}
		return api.PostPage{Data: data, Total: total, Page: page, PerPage: perPage}, nil
	}
}

func TestStreamPostsPagesUntilLast(t *testing.T) {
	var calls int
	w := &recordingWriter{}
	if err := streamPosts(context.Background(), 2, pagedFetch(5, &calls), w); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 fetches, got %d", calls)
	}
	if len(w.batches) != 3 || len(w.batches[2]) != 1 {
		t.Fatalf("unexpected batches: %v", w.batches)
	}
	if !w.closed {
		t.Fatalf("writer not closed")
	}
}

func TestStreamPostsEmptyStore(t *testing.T) {
	var calls int
	w := &recordingWriter{}
	if err := streamPosts(context.Background(), 0, pagedFetch(0, &calls), w); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if calls != 1 || len(w.batches) != 0 || !w.closed {
		t.Fatalf("calls=%d batches=%d closed=%v", calls, len(w.batches), w.closed)
	}
}

func TestStreamPostsStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	w := &recordingWriter{}
	err := streamPosts(context.Background(), 2, func(context.Context, int, int) (api.PostPage, error) {
		return api.PostPage{}, boom
	}, w)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if w.closed {
		t.Fatalf("writer closed after failure")
	}
}

func TestStreamPostsHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	if err := streamPosts(ctx, 2, pagedFetch(5, &calls), &recordingWriter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("fetched after cancel")
	}
}
