package shared

import "errors"

var (
	// ErrInvalidPeriod indicates a recurrence period code the generator does not know.
	ErrInvalidPeriod = errors.New("ledger: invalid recurrence period")
	// ErrAccountNotFound indicates a missing account row.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrTransactionNotFound indicates a missing transaction row.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrSnapshotConflict indicates a duplicate manual snapshot insert.
	ErrSnapshotConflict = errors.New("ledger: snapshot already recorded")
	// ErrTagCycle indicates a tag whose parent chain loops back on itself.
	ErrTagCycle = errors.New("ledger: tag hierarchy contains a cycle")
	// ErrInvalidWindow indicates a reporting window whose end precedes its start.
	ErrInvalidWindow = errors.New("ledger: end date before start date")
)
