package taxonomy

import "strings"

// Class labels produced by the labeler and the forest.
const (
	Benign  = 0
	Exposed = 1
)

// ClassName returns the human-readable risk level for a class label.
func ClassName(label int) string {
	if label == Exposed {
		return "Exposed"
	}
	return "Benign"
}

// ClassNames lists the risk levels in label order.
func ClassNames() []string {
	return []string{ClassName(Benign), ClassName(Exposed)}
}

// ParseKeywords splits a comma-separated list, trimming blanks and dropping
// empty entries. Returns nil if nothing remains.
func ParseKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
