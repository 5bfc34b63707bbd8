package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction. If the context
	// already carries a transaction, fn joins it instead of opening a
	// nested one, so composed operations (document create + initial
	// version append) commit or roll back as a single unit.
	ExecTx(ctx context.Context, fn TxFn) error
}
