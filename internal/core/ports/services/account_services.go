package services

import (
	"context"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

// AccountDirectory resolves accounts by symbolic code within a scope. It is
// the leaf dependency of the posting path: a pure lookup with no mutation
// during posting. A missing code is a configuration error and surfaces as
// MissingAccountError, never as a silently skipped line.
type AccountDirectory interface {
	// Resolve returns the active account for (scope, code).
	Resolve(ctx context.Context, scopeID, code string) (*domain.Account, error)

	// ResolveMany resolves a set of codes in one round trip, keyed by code.
	// Any unresolved code fails the whole call.
	ResolveMany(ctx context.Context, scopeID string, codes []string) (map[string]domain.Account, error)
}

// AccountSvcFacade manages the chart of accounts.
type AccountSvcFacade interface {
	AccountDirectory

	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, scopeID, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, scopeID string, limit, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, scopeID, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, scopeID, accountID string, actorID string) error
}
