package site

import (
	"net/url"
	"strings"
)

// ShareLink is one social sharing target for an article.
type ShareLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// encodeComponent escapes s for use inside a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ShareLinks builds the sharing URLs for an article located at pageURL.
func ShareLinks(pageURL, title, description string) []ShareLink {
	u := encodeComponent(pageURL)
	t := encodeComponent(title)
	d := encodeComponent(description)
	return []ShareLink{
		{Network: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + u},
		{Network: "twitter", URL: "https://twitter.com/intent/tweet?url=" + u + "&text=" + t},
		{Network: "linkedin", URL: "https://www.linkedin.com/sharing/share-offsite/?url=" + u},
		{Network: "whatsapp", URL: "https://wa.me/?text=" + t + "%20" + u},
		{Network: "telegram", URL: "https://t.me/share/url?url=" + u + "&text=" + t},
		{Network: "email", URL: "mailto:?subject=" + t + "&body=" + d + "%0A%0A" + u},
	}
}
