package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/mudawwana/pkg/api"
)

// JSONStreamWriter incrementally writes posts as a JSON array.
type JSONStreamWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

// NewJSONStreamWriter creates a streaming JSON writer.
func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	return &JSONStreamWriter{w: w, indent: indent}
}

// WritePosts writes a batch of posts.
func (jw *JSONStreamWriter) WritePosts(posts []api.Post) error {
	for _, p := range posts {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(p, "  ", "  ")
		} else {
			b, err = json.Marshal(p)
		}
		if err != nil {
			return err
		}
		sep := ","
		switch {
		case !jw.wroteAny && jw.indent:
			sep = "[\n  "
		case !jw.wroteAny:
			sep = "["
		case jw.indent:
			sep = ",\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close finishes the JSON array.
func (jw *JSONStreamWriter) Close() error {
	tail := "]\n"
	switch {
	case !jw.wroteAny:
		tail = "[]\n"
	case jw.indent:
		tail = "\n]\n"
	}
	_, err := io.WriteString(jw.w, tail)
	return err
}
