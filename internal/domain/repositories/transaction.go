package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
