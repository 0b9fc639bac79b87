package book_services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

// recognizedColumns is the closed, statically enumerated set of Transaction columns the query
// compiler will place at the top level of a filter; anything else nests under meta.<key>.
// Keeping this a map literal instead of reflecting over book_entities.Transaction is
// deliberate (§4.1, §9): the recognized set is part of the contract, not an implementation detail.
var recognizedColumns = map[string]bool{
	"voided":            true,
	"void_reason":       true,
	"timestamp":         true,
	"_original_journal": true,
	"debit":             true,
	"credit":            true,
}

// identifierColumns names recognized columns whose semantic type is a document-store
// identifier; a string value supplied for one of these is coerced (§4.1).
var identifierColumns = map[string]bool{
	"_original_journal": true,
}

// deniedKeys guards against prototype-pollution-style keys leaking into the filter (§4.1, §8).
var deniedKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// CompileQuery turns a user-facing Query into a bson.M filter scoped to book (§4.1).
func CompileQuery(book *book_entities.Book, query book_in.Query) (bson.M, error) {
	filter := bson.M{"book": book.Name}

	if query.Account != nil {
		accountFilter, err := compileAccount(book.MaxAccountPath, query.Account)
		if err != nil {
			return nil, err
		}
		for k, v := range accountFilter {
			filter[k] = v
		}
	}

	if query.StartDate != nil || query.EndDate != nil {
		dateFilter, err := compileDateRange(query.StartDate, query.EndDate)
		if err != nil {
			return nil, err
		}
		filter["datetime"] = dateFilter
	}

	if query.Journal != nil {
		filter["_journal"] = *query.Journal
	}

	for key, value := range query.Extra {
		if deniedKeys[key] {
			continue
		}

		if recognizedColumns[key] {
			if identifierColumns[key] {
				if s, ok := value.(string); ok {
					if id, err := uuid.Parse(s); err == nil {
						filter[key] = id
						continue
					}
				}
			}
			filter[key] = value
			continue
		}

		// Unrecognized keys nest under meta.<key> as individual dotted filter fields, so a
		// caller filtering on one meta field does not also have to match every other one.
		filter["meta."+key] = value
	}

	return filter, nil
}

func compileAccount(maxAccountPath int, account interface{}) (bson.M, error) {
	paths, err := toAccountPaths(account)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return bson.M{}, nil
	}

	allFullDepth := true
	for _, p := range paths {
		if !p.IsFullDepth(maxAccountPath) {
			allFullDepth = false
			break
		}
	}

	if allFullDepth {
		if len(paths) == 1 {
			return bson.M{"account_path": string(paths[0])}, nil
		}
		values := make([]string, len(paths))
		for i, p := range paths {
			values[i] = string(p)
		}
		return bson.M{"account_path": bson.M{"$in": values}}, nil
	}

	values := make([]string, len(paths))
	for i, p := range paths {
		values[i] = string(p)
	}
	return bson.M{"accounts": bson.M{"$in": values}}, nil
}

func toAccountPaths(account interface{}) ([]book_vos.AccountPath, error) {
	switch v := account.(type) {
	case string:
		return []book_vos.AccountPath{book_vos.AccountPath(v)}, nil
	case []string:
		paths := make([]book_vos.AccountPath, len(v))
		for i, s := range v {
			paths[i] = book_vos.AccountPath(s)
		}
		return paths, nil
	case []interface{}:
		paths := make([]book_vos.AccountPath, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("account entry %v is not a string", item)
			}
			paths = append(paths, book_vos.AccountPath(s))
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("unrecognized account shape %T", account)
	}
}

func compileDateRange(start, end interface{}) (bson.M, error) {
	rangeFilter := bson.M{}

	if start != nil {
		t, err := book_vos.CoerceDate(start)
		if err != nil {
			return nil, err
		}
		rangeFilter["$gte"] = t
	}

	if end != nil {
		t, err := book_vos.CoerceDate(end)
		if err != nil {
			return nil, err
		}
		rangeFilter["$lte"] = t
	}

	return rangeFilter, nil
}

// ExtractMeta rebuilds the free-form meta mapping a query's extra fields route to, for use as
// part of the balance engine's snapshot key (§4.3 step 1). Returns nil when there is none, so a
// meta-less query gets a distinct (and comparable) snapshot key from a meta-scoped one (§3).
func ExtractMeta(extra map[string]interface{}) bson.M {
	if len(extra) == 0 {
		return nil
	}

	meta := bson.M{}
	for key, value := range extra {
		if deniedKeys[key] || recognizedColumns[key] {
			continue
		}
		meta[key] = value
	}

	if len(meta) == 0 {
		return nil
	}

	return meta
}

// JoinedAccount canonicalizes a query's account shape into the comma-joined form used as part
// of the balance engine's snapshot key (§4.3 step 1).
func JoinedAccount(account interface{}) (string, error) {
	if account == nil {
		return "", nil
	}

	paths, err := toAccountPaths(account)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = string(p)
	}

	return strings.Join(parts, ","), nil
}
