// Package feed loads, syncs, and normalizes the internship listing feed.
package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// Job is one normalized listing. Instances are immutable after
// normalization and are rebuilt wholesale on every cache refresh.
type Job struct {
	UID        string `json:"uid"`
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`

	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Sponsorship string `json:"sponsorship,omitempty"`

	// DatePosted is unix seconds; 0 means unknown.
	DatePosted int64 `json:"date_posted,omitempty"`
}

// normalizeJob builds a Job from one raw feed record. Raw records come from
// a third-party file; a missing or malformed value degrades to its zero
// value rather than failing the load.
func normalizeJob(item map[string]any) Job {
	source := asString(item["source"])
	externalID := asString(item["id"])

	uid := externalID
	if source != "" && externalID != "" {
		uid = source + ":" + externalID
	}

	return Job{
		UID:         uid,
		Source:      source,
		ExternalID:  externalID,
		Title:       asString(item["title"]),
		Company:     asString(item["company_name"]),
		Location:    asLocation(item["locations"]),
		URL:         asString(item["url"]),
		Category:    asString(item["category"]),
		Sponsorship: asString(item["sponsorship"]),
		DatePosted:  asInt64(item["date_posted"]),
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		// Booleans and anything else do not count as timestamps.
		return 0
	}
}

func asLocation(value any) string {
	list, ok := value.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(list))
	for _, v := range list {
		if s := asString(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func asVisible(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s != "" && s != "false" && s != "0"
	case float64:
		return v != 0
	default:
		return false
	}
}
