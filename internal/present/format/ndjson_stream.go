package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/mudawwana/pkg/api"
)

// NDJSONStreamWriter incrementally writes posts as NDJSON.
type NDJSONStreamWriter struct {
	enc *json.Encoder
}

// NewNDJSONStreamWriter creates a streaming NDJSON writer.
func NewNDJSONStreamWriter(w io.Writer) *NDJSONStreamWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONStreamWriter{enc: enc}
}

// WritePosts writes a batch of posts.
func (nw *NDJSONStreamWriter) WritePosts(posts []api.Post) error {
	for _, p := range posts {
		if err := nw.enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for NDJSON output.
func (nw *NDJSONStreamWriter) Close() error { return nil }
