package common

import (
	"fmt"
)

// ResourceType names the kind of resource an error refers to, for message formatting.
type ResourceType string

// Error types for type assertions
type ErrUnauthorized struct {
	message string
}

func (e *ErrUnauthorized) Error() string {
	return e.message
}

type ErrForbidden struct {
	message string
}

func (e *ErrForbidden) Error() string {
	return e.message
}

type ErrNotFound struct {
	message string
}

func (e *ErrNotFound) Error() string {
	return e.message
}

type ErrAlreadyExists struct {
	message string
}

func (e *ErrAlreadyExists) Error() string {
	return e.message
}

type ErrInvalidInput struct {
	message string
}

func (e *ErrInvalidInput) Error() string {
	return e.message
}

func NewErrUnauthorized() error {
	return &ErrUnauthorized{message: "Unauthorized"}
}

func NewErrForbidden(messages ...string) error {
	msg := "Forbidden"
	if len(messages) > 0 && messages[0] != "" {
		msg = messages[0]
	}
	return &ErrForbidden{message: msg}
}

func NewErrAlreadyExists(resourceType ResourceType, fieldName string, value interface{}) error {
	return &ErrAlreadyExists{message: fmt.Sprintf("%s with %s %v already exists", resourceType, fieldName, value)}
}

func NewErrNotFound(resourceType ResourceType, fieldName string, value interface{}) error {
	return &ErrNotFound{message: fmt.Sprintf("%s with %s %v not found", resourceType, fieldName, value)}
}

func NewErrInvalidInput(message string) error {
	return &ErrInvalidInput{message: message}
}

type ErrBadRequest struct {
	message string
}

func (e *ErrBadRequest) Error() string {
	return e.message
}

func NewErrBadRequest(message string) error {
	return &ErrBadRequest{message: message}
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	_, ok := err.(*ErrUnauthorized)
	return ok
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	_, ok := err.(*ErrForbidden)
	return ok
}

// IsBadRequestError checks if an error is a bad request error
func IsBadRequestError(err error) bool {
	_, ok := err.(*ErrBadRequest)
	return ok
}

// IsInvalidInputError checks if an error is an invalid input error
func IsInvalidInputError(err error) bool {
	_, ok := err.(*ErrInvalidInput)
	return ok
}

// ErrBookConstructor reports invalid Book construction arguments.
type ErrBookConstructor struct {
	message string
}

func (e *ErrBookConstructor) Error() string {
	return e.message
}

func NewBookConstructorError(message string) error {
	return &ErrBookConstructor{message: message}
}

func IsBookConstructorError(err error) bool {
	_, ok := err.(*ErrBookConstructor)
	return ok
}

// ErrJournalNotFound reports a void target that does not exist or belongs to another book.
type ErrJournalNotFound struct {
	message string
}

func (e *ErrJournalNotFound) Error() string {
	return e.message
}

func NewJournalNotFoundError(book string, journalID fmt.Stringer) error {
	return &ErrJournalNotFound{message: fmt.Sprintf("journal %s not found in book %q", journalID, book)}
}

func IsJournalNotFoundError(err error) bool {
	_, ok := err.(*ErrJournalNotFound)
	return ok
}

// ErrJournalAlreadyVoided reports a second void attempt on the same journal.
type ErrJournalAlreadyVoided struct {
	message string
}

func (e *ErrJournalAlreadyVoided) Error() string {
	return e.message
}

func NewJournalAlreadyVoidedError(journalID fmt.Stringer) error {
	return &ErrJournalAlreadyVoided{message: fmt.Sprintf("journal %s is already voided", journalID)}
}

func IsJournalAlreadyVoidedError(err error) bool {
	_, ok := err.(*ErrJournalAlreadyVoided)
	return ok
}

// ErrBookUnbalancedTransaction reports a commit whose debits and credits do not balance
// within the book's configured precision.
type ErrBookUnbalancedTransaction struct {
	message string
}

func (e *ErrBookUnbalancedTransaction) Error() string {
	return e.message
}

func NewBookUnbalancedTransactionError(totalDebit, totalCredit string) error {
	return &ErrBookUnbalancedTransaction{
		message: fmt.Sprintf("unbalanced entry: total debit %s does not equal total credit %s", totalDebit, totalCredit),
	}
}

func IsBookUnbalancedTransactionError(err error) bool {
	_, ok := err.(*ErrBookUnbalancedTransaction)
	return ok
}

// ErrTransientTransaction wraps a store-level write conflict the caller is expected to retry.
type ErrTransientTransaction struct {
	message string
	cause   error
}

func (e *ErrTransientTransaction) Error() string {
	return e.message
}

func (e *ErrTransientTransaction) Unwrap() error {
	return e.cause
}

func NewTransientTransactionError(cause error) error {
	return &ErrTransientTransaction{message: fmt.Sprintf("transient transaction conflict, retry: %v", cause), cause: cause}
}

func IsTransientTransactionError(err error) bool {
	_, ok := err.(*ErrTransientTransaction)
	return ok
}

// ErrInvalidAccountPath reports an account path with an empty segment or too many segments.
type ErrInvalidAccountPath struct {
	message string
}

func (e *ErrInvalidAccountPath) Error() string {
	return e.message
}

func NewInvalidAccountPathError(message string) error {
	return &ErrInvalidAccountPath{message: message}
}

func IsInvalidAccountPathError(err error) bool {
	_, ok := err.(*ErrInvalidAccountPath)
	return ok
}
