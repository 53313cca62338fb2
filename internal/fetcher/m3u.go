package fetcher

import (
	"regexp"
	"strings"
)

const extinfMarker = "#EXTINF:"

// reAttr matches key="value" and key='value' pairs; keys may be hyphenated.
var reAttr = regexp.MustCompile(`(\w+(?:-\w+)*)=["']([^"']*)["']`)

// Entry is one #EXTINF descriptor paired with its URL line.
type Entry struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Logo  *string `json:"logo,omitempty"`
	Group *string `json:"group,omitempty"`
	TvgID *string `json:"tvg_id,omitempty"`
}

// ParseStats describes how many descriptors a parse saw and dropped.
type ParseStats struct {
	Descriptors int
	Dropped     int
}

// Parse converts M3U/M3U8 text into entries in source order.
// Descriptors without a following URL line, or with an empty title, are
// skipped; Parse never fails.
func Parse(content string) []Entry {
	entries, _ := ParseWithStats(content)
	return entries
}

// ParseWithStats is Parse that also reports the dropped descriptor count.
func ParseWithStats(content string) ([]Entry, ParseStats) {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var entries []Entry
	var stats ParseStats
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], extinfMarker) {
			continue
		}
		stats.Descriptors++
		if i+1 >= len(lines) || strings.HasPrefix(lines[i+1], "#") {
			stats.Dropped++
			continue
		}
		descriptor, urlLine := lines[i], lines[i+1]
		i++ // the URL line is consumed with its descriptor
		e, ok := parseExtinf(descriptor, urlLine)
		if !ok {
			stats.Dropped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, stats
}

// parseExtinf builds an entry from "#EXTINF:<duration> <attrs>,<title>" and a URL line.
func parseExtinf(descriptor, urlLine string) (Entry, bool) {
	body := descriptor[len(extinfMarker):]
	comma := titleComma(body)
	if comma < 0 {
		return Entry{}, false
	}
	title := strings.TrimSpace(body[comma+1:])
	url := strings.TrimSpace(urlLine)
	if title == "" || url == "" {
		return Entry{}, false
	}
	attrs := attributes(body[:comma])
	// some exporters put attributes after the comma; the head still wins
	for k, v := range attributes(title) {
		if _, ok := attrs[k]; !ok {
			attrs[k] = v
		}
	}
	return Entry{
		Name:  title,
		URL:   url,
		Logo:  firstAttr(attrs, "tvg-logo", "logo"),
		Group: firstAttr(attrs, "group-title", "group"),
		TvgID: firstAttr(attrs, "tvg-id"),
	}, true
}

// titleComma returns the index of the first comma that is not inside a
// quoted attribute value, or -1.
func titleComma(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case (c == '"' || c == '\'') && i > 0 && s[i-1] == '=':
			quote = c
		case c == ',':
			return i
		}
	}
	if quote != 0 {
		// unterminated quote: fall back to the first comma
		return strings.IndexByte(s, ',')
	}
	return -1
}

func attributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range reAttr.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// firstAttr returns the first non-empty value among keys.
func firstAttr(attrs map[string]string, keys ...string) *string {
	for _, k := range keys {
		if v := attrs[k]; v != "" {
			return &v
		}
	}
	return nil
}
