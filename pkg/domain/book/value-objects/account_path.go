package book_vos

import (
	"strings"

	common "github.com/psavelis/ledger-book/pkg/domain"
)

// AccountPath is a colon-delimited hierarchical account name, e.g. "Assets:Cash:Checking".
type AccountPath string

// Segments splits the path on ":".
func (p AccountPath) Segments() []string {
	return strings.Split(string(p), ":")
}

// Validate rejects empty paths, empty segments, and paths deeper than maxSegments.
func (p AccountPath) Validate(maxSegments int) error {
	if len(p) == 0 {
		return common.NewInvalidAccountPathError("account path must not be empty")
	}

	segments := p.Segments()
	if len(segments) > maxSegments {
		return common.NewInvalidAccountPathError("account path has more than the book's maxAccountPath segments")
	}

	for _, segment := range segments {
		if segment == "" {
			return common.NewInvalidAccountPathError("account path must not contain empty segments")
		}
	}

	return nil
}

// Prefixes returns every prefix of the path in order, e.g. "A:B:C" -> ["A", "A:B", "A:B:C"].
// This is the array stored as Transaction.Accounts so that ancestor queries match descendant postings.
func (p AccountPath) Prefixes() []string {
	segments := p.Segments()
	prefixes := make([]string, 0, len(segments))

	for i := range segments {
		prefixes = append(prefixes, strings.Join(segments[:i+1], ":"))
	}

	return prefixes
}

// IsFullDepth reports whether the path uses exactly maxSegments segments, the case where
// the query compiler can match on AccountPath equality instead of the Accounts prefix array.
func (p AccountPath) IsFullDepth(maxSegments int) bool {
	return len(p.Segments()) == maxSegments
}
