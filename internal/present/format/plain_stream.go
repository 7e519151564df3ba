package format

import (
	"io"
	"text/tabwriter"

	"github.com/mithrel/mudawwana/pkg/api"
)

// PlainStreamWriter incrementally writes posts in the same plain TSV format.
// Column widths are settled per batch.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	opts        PostOptions
	wroteHeader bool
}

// NewPlainStreamWriter creates a streaming plain writer.
func NewPlainStreamWriter(w io.Writer, opts PostOptions) *PlainStreamWriter {
	return &PlainStreamWriter{
		tw:   tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		opts: opts,
	}
}

// WritePosts writes a batch of posts and flushes.
func (pw *PlainStreamWriter) WritePosts(posts []api.Post) error {
	if pw.opts.Headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, postHeader)
		pw.wroteHeader = true
	}
	for _, p := range posts {
		_, _ = io.WriteString(pw.tw, postLine(p, pw.opts))
	}
	return pw.tw.Flush()
}

// Close flushes remaining buffered output.
func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}
