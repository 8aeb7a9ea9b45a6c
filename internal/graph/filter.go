package graph

import "strings"

// DefaultExternalKeywords names infrastructure that a diagram may show but a
// configuration file does not describe as a device.
var DefaultExternalKeywords = []string{
	"isp",
	"backup",
	"internet",
	"printer",
	"cloud",
	"wan",
	"firewall",
}

// FilterExternal returns a copy of a without the keys that contain any of
// the keywords, compared case-insensitively. Neighbor lists of the kept keys
// are copied unchanged, so references to removed nodes remain.
func (a Adjacency) FilterExternal(keywords []string) Adjacency {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}

	filtered := make(Adjacency, len(a))
	for node, neighbors := range a {
		if matchesAny(strings.ToLower(node), lowered) {
			continue
		}
		kept := make([]string, len(neighbors))
		copy(kept, neighbors)
		filtered[node] = kept
	}
	return filtered
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
