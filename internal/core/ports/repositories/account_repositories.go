package repositories

import (
	"context"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its symbolic code within a scope.
	FindAccountByCode(ctx context.Context, scopeID, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts by code within a scope,
	// keyed by code. Codes with no matching account are absent from the map.
	FindAccountsByCodes(ctx context.Context, scopeID string, codes []string) (map[string]domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by ID, keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given scope.
	ListAccounts(ctx context.Context, scopeID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Accounts referenced by
	// posted lines are never deleted.
	DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside the journal
// append transaction.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update
	// within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas for multiple accounts
	// within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
