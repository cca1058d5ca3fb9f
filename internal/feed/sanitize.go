package feed

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/otabekmirzaev/intern-scout/internal/urlutil"
)

// CleanText strips HTML tags and entities that occasionally leak into feed
// titles and company names, then collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(extractText(doc)), " ")
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}

// sanitizeRecord cleans the text fields of one raw feed record in place and
// canonicalizes its URL. Non-string fields are left untouched so the local
// file keeps the upstream schema.
func sanitizeRecord(item map[string]any) {
	for _, key := range []string{"title", "company_name", "category", "sponsorship"} {
		if s, ok := item[key].(string); ok {
			item[key] = CleanText(s)
		}
	}
	if locations, ok := item["locations"].([]any); ok {
		for i, v := range locations {
			if s, ok := v.(string); ok {
				locations[i] = CleanText(s)
			}
		}
	}
	if s, ok := item["url"].(string); ok && strings.TrimSpace(s) != "" {
		if cleaned, err := urlutil.Clean(s); err == nil {
			item["url"] = cleaned
		}
	}
}
