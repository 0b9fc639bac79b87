package book_entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

// Transaction is one posting (debit or credit leg) of a Journal.
//
// ID is a mongo ObjectID, not a uuid, because the balance engine's snapshot window
// (§4.3: "narrow the live filter by _id > snapshot.transaction") depends on identifiers
// that are monotonically increasing in insertion order; a random uuid would break that
// comparison. Journal identifiers have no such requirement and stay uuid.UUID.
//
// Debit and Credit are primitive.Decimal128 rather than a float or a plain string, so the
// balance engine's $sum/$subtract aggregation (§6) operates on them exactly in the store
// itself, not only after being read back into Go.
type Transaction struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id"`
	Book            string                 `json:"book" bson:"book"`
	Journal         uuid.UUID              `json:"_journal" bson:"_journal"`
	Datetime        time.Time              `json:"datetime" bson:"datetime"`
	Timestamp       time.Time              `json:"timestamp" bson:"timestamp"`
	AccountPath     string                 `json:"account_path" bson:"account_path"`
	Accounts        []string               `json:"accounts" bson:"accounts"`
	Debit           primitive.Decimal128   `json:"debit" bson:"debit"`
	Credit          primitive.Decimal128   `json:"credit" bson:"credit"`
	Meta            map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
	Voided          bool                   `json:"voided" bson:"voided"`
	VoidReason      string                 `json:"void_reason,omitempty" bson:"void_reason,omitempty"`
	OriginalJournal *uuid.UUID             `json:"_original_journal,omitempty" bson:"_original_journal,omitempty"`

	// JournalDoc and OriginalJournalDoc are hydrated by the ledger lister's populate option
	// (§4.4); their bson:"-" tag keeps the driver from persisting or decoding them.
	JournalDoc         *Journal `json:"_journal_doc,omitempty" bson:"-"`
	OriginalJournalDoc *Journal `json:"_original_journal_doc,omitempty" bson:"-"`
}

func (t *Transaction) DebitAmount() decimal.Decimal {
	return book_vos.DecimalFromDecimal128(t.Debit)
}

func (t *Transaction) CreditAmount() decimal.Decimal {
	return book_vos.DecimalFromDecimal128(t.Credit)
}

// NewPosting builds a posting for path. It stores debit and credit as given and does not check
// that exactly one of them is non-zero.
func NewPosting(book string, journal uuid.UUID, datetime time.Time, path book_vos.AccountPath, debit, credit book_vos.Amount, meta map[string]interface{}) (*Transaction, error) {
	debit128, err := debit.ToDecimal128()
	if err != nil {
		return nil, err
	}

	credit128, err := credit.ToDecimal128()
	if err != nil {
		return nil, err
	}

	return &Transaction{
		ID:          primitive.NewObjectID(),
		Book:        book,
		Journal:     journal,
		Datetime:    datetime,
		AccountPath: string(path),
		Accounts:    path.Prefixes(),
		Debit:       debit128,
		Credit:      credit128,
		Meta:        meta,
	}, nil
}
