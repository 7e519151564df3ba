package format

import (
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/mudawwana/pkg/api"
)

// TSV columns: slug, title, category, created, age, read_min, tags
const postHeader = "slug\ttitle\tcategory\tcreated\tage\tread_min\ttags\n"

// PostOptions control how post rows are written.
type PostOptions struct {
	Lang     api.Lang
	Headers  bool
	Now      time.Time
	ReadTime func(body string) int
	Width    int // wrap width for pretty output; 0 means 80
}

func (o PostOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o PostOptions) readTime(body string) int {
	if o.ReadTime == nil {
		return 0
	}
	return o.ReadTime(body)
}

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// joinTags joins with commas, no spaces.
func joinTags(tags []string) string { return strings.Join(tags, ",") }

func categoryName(p api.Post, l api.Lang) string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name(l)
}

func postLine(p api.Post, opts PostOptions) string {
	age := ""
	if !p.CreatedAt.IsZero() {
		age = humanize.RelTime(p.CreatedAt, opts.now(), "ago", "from now")
	}
	return esc(p.Slug) + "\t" +
		esc(p.Title(opts.Lang)) + "\t" +
		esc(categoryName(p, opts.Lang)) + "\t" +
		p.CreatedAt.Format(time.DateOnly) + "\t" +
		age + "\t" +
		strconv.Itoa(opts.readTime(p.Content(opts.Lang))) + "\t" +
		esc(joinTags(p.TagNames(opts.Lang))) + "\n"
}

func WritePlainPosts(w io.Writer, posts []api.Post, opts PostOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if opts.Headers {
		_, _ = io.WriteString(tw, postHeader)
	}
	for _, p := range posts {
		_, _ = io.WriteString(tw, postLine(p, opts))
	}
	return tw.Flush()
}

func WritePlainCategories(w io.Writer, cats []api.Category, l api.Lang, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, "slug\tname\tposts\tdescription\n")
	}
	for _, c := range cats {
		_, _ = io.WriteString(tw, esc(c.Slug)+"\t"+esc(c.Name(l))+"\t"+strconv.Itoa(c.PostCount)+"\t"+esc(c.Description(l))+"\n")
	}
	return tw.Flush()
}

func WritePlainTags(w io.Writer, tags []api.Tag, l api.Lang, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, "slug\tname\tposts\n")
	}
	for _, t := range tags {
		_, _ = io.WriteString(tw, esc(t.Slug)+"\t"+esc(t.Name(l))+"\t"+strconv.Itoa(t.PostCount)+"\n")
	}
	return tw.Flush()
}

func WritePlainSubscribers(w io.Writer, subs []api.Subscriber, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, "email\tsubscribed\tactive\n")
	}
	for _, s := range subs {
		_, _ = io.WriteString(tw, esc(s.Email)+"\t"+s.SubscribedAt.UTC().Format(time.RFC3339)+"\t"+strconv.FormatBool(s.Active)+"\n")
	}
	return tw.Flush()
}
