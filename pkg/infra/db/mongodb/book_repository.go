package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common "github.com/psavelis/ledger-book/pkg/domain"
	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

const (
	transactionsCollection = "transactions"
	journalsCollection     = "journals"
	locksCollection        = "locks"
	balancesCollection     = "balances"
)

// BookRepository implements MongoDB persistence for the book domain's transactions, journals,
// account locks, and balance snapshots (§6).
type BookRepository struct {
	db *mongo.Database
}

// NewBookRepository wires a mongo database to the book domain's store-facing port and ensures
// its indexes exist.
func NewBookRepository(db *mongo.Database) book_out.BookRepository {
	repo := &BookRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *BookRepository) ensureIndexes() {
	ctx := context.Background()

	transactionIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "account_path", Value: 1}}},
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "accounts", Value: 1}}},
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "datetime", Value: 1}}},
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "_journal", Value: 1}}},
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "_id", Value: 1}}},
	}

	journalIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "_id", Value: 1}}},
	}

	lockIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "book", Value: 1}, {Key: "account", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	balanceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "book", Value: 1}, {Key: "account", Value: 1}, {Key: "meta", Value: 1}, {Key: "transaction", Value: -1}}},
		{
			Keys:    bson.D{{Key: "expireAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := r.db.Collection(transactionsCollection).Indexes().CreateMany(ctx, transactionIndexes); err != nil {
		slog.Error("failed to create transaction indexes", "err", err)
	}
	if _, err := r.db.Collection(journalsCollection).Indexes().CreateMany(ctx, journalIndexes); err != nil {
		slog.Error("failed to create journal indexes", "err", err)
	}
	if _, err := r.db.Collection(locksCollection).Indexes().CreateMany(ctx, lockIndexes); err != nil {
		slog.Error("failed to create lock indexes", "err", err)
	}
	if _, err := r.db.Collection(balancesCollection).Indexes().CreateMany(ctx, balanceIndexes); err != nil {
		slog.Error("failed to create balance indexes", "err", err)
	}
}

func (r *BookRepository) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})

	return translateTransientError(err)
}

// translateTransientError surfaces the driver's TransientTransactionError label (written-write
// conflicts between concurrent commits on overlapping accounts, §5) as the domain's own
// TransientTransactionError, so callers dispatch on it with common.IsTransientTransactionError
// instead of inspecting driver-specific labels.
func translateTransientError(err error) error {
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
		return common.NewTransientTransactionError(err)
	}

	var writeException mongo.WriteException
	if errors.As(err, &writeException) {
		for _, label := range writeException.Labels {
			if label == "TransientTransactionError" {
				return common.NewTransientTransactionError(err)
			}
		}
	}

	return err
}

// AcquireAccountLocks upserts a lock document per account in deterministic order, so two
// concurrent commits touching overlapping accounts always contend for the same lock sequence
// instead of deadlocking each other (§4.2, §5).
func (r *BookRepository) AcquireAccountLocks(sessCtx mongo.SessionContext, book string, accounts []string) error {
	collection := r.db.Collection(locksCollection)
	now := time.Now().UTC()

	for _, account := range accounts {
		filter := bson.M{"book": book, "account": account}
		update := bson.M{
			"$set":         bson.M{"updatedAt": now},
			"$inc":         bson.M{"revision": int64(1)},
			"$setOnInsert": bson.M{"book": book, "account": account},
		}

		if _, err := collection.UpdateOne(sessCtx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return translateTransientError(fmt.Errorf("failed to acquire lock on %s: %w", account, err))
		}
	}

	return nil
}

func (r *BookRepository) InsertJournal(sessCtx mongo.SessionContext, journal *book_entities.Journal) error {
	_, err := r.db.Collection(journalsCollection).InsertOne(sessCtx, journal)
	if err != nil {
		return fmt.Errorf("failed to insert journal: %w", err)
	}
	return nil
}

func (r *BookRepository) InsertTransactions(sessCtx mongo.SessionContext, transactions []*book_entities.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	docs := make([]interface{}, len(transactions))
	for i, t := range transactions {
		docs[i] = t
	}

	_, err := r.db.Collection(transactionsCollection).InsertMany(sessCtx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	return nil
}

func (r *BookRepository) FindJournalByID(ctx context.Context, book string, journalID uuid.UUID) (*book_entities.Journal, error) {
	var journal book_entities.Journal

	filter := bson.M{"book": book, "_id": journalID}
	err := r.db.Collection(journalsCollection).FindOne(ctx, filter).Decode(&journal)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find journal: %w", err)
	}

	return &journal, nil
}

func (r *BookRepository) FindTransactionsByJournal(ctx context.Context, book string, journalID uuid.UUID) ([]*book_entities.Transaction, error) {
	filter := bson.M{"book": book, "_journal": journalID}

	cursor, err := r.db.Collection(transactionsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*book_entities.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return transactions, nil
}

func (r *BookRepository) MarkJournalVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string, voidedBy uuid.UUID) error {
	filter := bson.M{"book": book, "_id": journalID}
	update := bson.M{"$set": bson.M{"voided": true, "void_reason": reason, "voided_by": voidedBy}}

	result, err := r.db.Collection(journalsCollection).UpdateOne(sessCtx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark journal voided: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("journal not found during void: %s", journalID)
	}

	return nil
}

func (r *BookRepository) MarkTransactionsVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string) error {
	filter := bson.M{"book": book, "_journal": journalID}
	update := bson.M{"$set": bson.M{"voided": true, "void_reason": reason}}

	_, err := r.db.Collection(transactionsCollection).UpdateMany(sessCtx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark transactions voided: %w", err)
	}

	return nil
}

// Aggregate runs the balance engine's match/group pipeline (§4.3 step 2): sum of credit minus
// debit over filter, narrowed to whatever window the caller already applied (e.g. the snapshot's
// _id boundary), using $subtract and $sum so MongoDB does the arithmetic on the stored
// Decimal128 values instead of Go summing floats after the fact.
func (r *BookRepository) Aggregate(ctx context.Context, book string, filter bson.M) (book_out.AggregateResult, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$subtract": bson.A{"$credit", "$debit"}}},
			"count": bson.M{"$sum": 1},
			"lastId": bson.M{"$last": "$_id"},
		}}},
	}

	cursor, err := r.db.Collection(transactionsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return book_out.AggregateResult{}, fmt.Errorf("failed to aggregate balance: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return book_out.AggregateResult{Balance: decimal.Zero}, nil
	}

	var result struct {
		Total primitive.Decimal128 `bson:"total"`
		Count int64                `bson:"count"`
		LastID primitive.ObjectID  `bson:"lastId"`
	}
	if err := cursor.Decode(&result); err != nil {
		return book_out.AggregateResult{}, fmt.Errorf("failed to decode aggregate: %w", err)
	}

	return book_out.AggregateResult{
		Balance:           book_vos.DecimalFromDecimal128(result.Total),
		Count:             result.Count,
		LastTransactionID: result.LastID,
		Found:             true,
	}, nil
}

func (r *BookRepository) FindBestSnapshot(ctx context.Context, key book_out.SnapshotKey) (*book_entities.BalanceSnapshot, error) {
	filter := bson.M{"book": key.Book}
	if key.Account != "" {
		filter["account"] = key.Account
	} else {
		filter["account"] = bson.M{"$in": bson.A{"", nil}}
	}
	if key.Meta != nil {
		filter["meta"] = key.Meta
	} else {
		filter["meta"] = nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "transaction", Value: -1}})

	var snapshot book_entities.BalanceSnapshot
	err := r.db.Collection(balancesCollection).FindOne(ctx, filter, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}

	return &snapshot, nil
}

func (r *BookRepository) SaveSnapshot(ctx context.Context, snapshot *book_entities.BalanceSnapshot) error {
	_, err := r.db.Collection(balancesCollection).InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *BookRepository) ListTransactions(ctx context.Context, book string, filter bson.M, sort book_out.SortSpec, skip, limit int64, populate []string) ([]*book_entities.Transaction, error) {
	opts := options.Find().SetSort(sort)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.db.Collection(transactionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*book_entities.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	if err := r.populateJournalRefs(ctx, transactions, populate); err != nil {
		return nil, err
	}

	return transactions, nil
}

// populateJournalRefs hydrates JournalDoc/OriginalJournalDoc on each transaction for whichever
// of "_journal"/"_original_journal" the caller requested (§4.4), batching one Find per reference
// column instead of one round-trip per transaction.
func (r *BookRepository) populateJournalRefs(ctx context.Context, transactions []*book_entities.Transaction, populate []string) error {
	var wantJournal, wantOriginal bool
	for _, field := range populate {
		switch field {
		case "_journal":
			wantJournal = true
		case "_original_journal":
			wantOriginal = true
		}
	}
	if !wantJournal && !wantOriginal {
		return nil
	}

	ids := make(map[uuid.UUID]struct{})
	if wantJournal {
		for _, t := range transactions {
			ids[t.Journal] = struct{}{}
		}
	}
	if wantOriginal {
		for _, t := range transactions {
			if t.OriginalJournal != nil {
				ids[*t.OriginalJournal] = struct{}{}
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	idList := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	cursor, err := r.db.Collection(journalsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": idList}})
	if err != nil {
		return fmt.Errorf("failed to populate journals: %w", err)
	}
	defer cursor.Close(ctx)

	var journals []*book_entities.Journal
	if err := cursor.All(ctx, &journals); err != nil {
		return fmt.Errorf("failed to decode populated journals: %w", err)
	}

	byID := make(map[uuid.UUID]*book_entities.Journal, len(journals))
	for _, j := range journals {
		byID[j.ID] = j
	}

	for _, t := range transactions {
		if wantJournal {
			t.JournalDoc = byID[t.Journal]
		}
		if wantOriginal && t.OriginalJournal != nil {
			t.OriginalJournalDoc = byID[*t.OriginalJournal]
		}
	}

	return nil
}

func (r *BookRepository) CountTransactions(ctx context.Context, book string, filter bson.M) (int64, error) {
	count, err := r.db.Collection(transactionsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *BookRepository) ListAccounts(ctx context.Context, book string) ([]string, error) {
	pathValues, err := r.db.Collection(transactionsCollection).Distinct(ctx, "accounts", bson.M{"book": book})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]string, 0, len(pathValues))
	for _, v := range pathValues {
		if s, ok := v.(string); ok {
			accounts = append(accounts, s)
		}
	}

	return accounts, nil
}
