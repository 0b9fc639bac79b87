package book_vos

import (
	"fmt"
	"time"

	common "github.com/psavelis/ledger-book/pkg/domain"
)

// CoerceDate normalizes a native time.Time, a parseable date string, or a numeric epoch in
// milliseconds into a time.Time (§4.1). Any other shape fails the caller synchronously.
func CoerceDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, common.NewErrInvalidInput(fmt.Sprintf("unparseable date string %q", v))
	case int64:
		return time.UnixMilli(v), nil
	case int:
		return time.UnixMilli(int64(v)), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	default:
		return time.Time{}, common.NewErrInvalidInput(fmt.Sprintf("unrecognized date shape %T", value))
	}
}
