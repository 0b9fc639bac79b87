package book_entities

import (
	common "github.com/psavelis/ledger-book/pkg/domain"
)

const (
	DefaultPrecision          = 8
	DefaultMaxAccountPath     = 3
	DefaultBalanceSnapshotSec = 86400
)

// Book is a namespace: the primary partition key of every document this module writes.
type Book struct {
	Name               string
	Precision          int
	MaxAccountPath     int
	BalanceSnapshotSec int
}

// BookOptions carries the constructor's optional tunables; zero values fall back to defaults.
type BookOptions struct {
	Precision          *int
	MaxAccountPath     *int
	BalanceSnapshotSec *int
}

// NewBook validates its arguments and returns a Book, or a BookConstructorError.
func NewBook(name string, opts BookOptions) (*Book, error) {
	if name == "" {
		return nil, common.NewBookConstructorError("book name must not be empty")
	}

	precision := DefaultPrecision
	if opts.Precision != nil {
		if *opts.Precision < 0 {
			return nil, common.NewBookConstructorError("precision must not be negative")
		}
		precision = *opts.Precision
	}

	maxAccountPath := DefaultMaxAccountPath
	if opts.MaxAccountPath != nil {
		if *opts.MaxAccountPath < 0 {
			return nil, common.NewBookConstructorError("maxAccountPath must not be negative")
		}
		maxAccountPath = *opts.MaxAccountPath
	}

	balanceSnapshotSec := DefaultBalanceSnapshotSec
	if opts.BalanceSnapshotSec != nil {
		if *opts.BalanceSnapshotSec < 0 {
			return nil, common.NewBookConstructorError("balanceSnapshotSec must not be negative")
		}
		balanceSnapshotSec = *opts.BalanceSnapshotSec
	}

	return &Book{
		Name:               name,
		Precision:          precision,
		MaxAccountPath:     maxAccountPath,
		BalanceSnapshotSec: balanceSnapshotSec,
	}, nil
}

// SnapshotsEnabled reports whether the balance engine should consult/write snapshot documents.
func (b *Book) SnapshotsEnabled() bool {
	return b.BalanceSnapshotSec > 0
}
