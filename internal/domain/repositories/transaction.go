package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// Repositories called with the ctx passed to fn participate in the transaction.
type TransactionManager interface {
	// ExecTx executes a function within a read-write transaction.
	// Nested calls join the outer transaction.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecReadTx executes a function within a read-only transaction that
	// sees a single consistent snapshot for all of its reads.
	ExecReadTx(ctx context.Context, fn TxFn) error
}
