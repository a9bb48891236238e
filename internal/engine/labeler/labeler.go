// Package labeler assigns heuristic exposure labels to device banners.
package labeler

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hejijunhao/camscan/internal/engine/taxonomy"
)

// Labeler marks a banner as exposed when it contains any configured keyword,
// ignoring case.
type Labeler struct {
	keywords []string // case-folded, non-empty
}

// New creates a Labeler. Empty keywords are dropped.
func New(keywords []string) *Labeler {
	fold := cases.Fold()
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		folded = append(folded, fold.String(kw))
	}
	return &Labeler{keywords: folded}
}

// Keywords returns the folded keyword list.
func (l *Labeler) Keywords() []string {
	return append([]string(nil), l.keywords...)
}

// Label returns taxonomy.Exposed if banner contains a keyword, else taxonomy.Benign.
func (l *Labeler) Label(banner string) int {
	if banner == "" {
		return taxonomy.Benign
	}
	return l.label(cases.Fold(), banner)
}

// LabelAll labels each banner. The result has the same length as banners.
func (l *Labeler) LabelAll(banners []string) []int {
	fold := cases.Fold()
	labels := make([]int, len(banners))
	for i, b := range banners {
		if b == "" {
			continue
		}
		labels[i] = l.label(fold, b)
	}
	return labels
}

func (l *Labeler) label(fold cases.Caser, banner string) int {
	text := fold.String(banner)
	for _, kw := range l.keywords {
		if strings.Contains(text, kw) {
			return taxonomy.Exposed
		}
	}
	return taxonomy.Benign
}
