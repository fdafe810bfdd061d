package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUnknownAccountType = errors.New("unknown account type")
)

type cachedAccount struct {
	account   domain.Account
	expiresAt time.Time
}

// accountService manages the chart of accounts and acts as the Account
// Directory for posting. Resolution is read-mostly, so resolved accounts are
// cached per scope with a TTL; every write to the chart invalidates the
// owning scope's cache. Entries are never cached across scopes.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	cacheTTL    time.Duration

	mu    sync.RWMutex
	cache map[string]map[string]cachedAccount // scopeID -> code -> entry
}

// NewAccountService creates the chart-of-accounts service. A cacheTTL of zero
// disables directory caching.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, cacheTTL time.Duration) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		cacheTTL:    cacheTTL,
		cache:       make(map[string]map[string]cachedAccount),
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Resolve returns the active account for (scope, code). A missing code is a
// chart configuration defect and surfaces as MissingAccountError.
func (s *accountService) Resolve(ctx context.Context, scopeID, code string) (*domain.Account, error) {
	if acc, ok := s.cacheGet(scopeID, code); ok {
		return acc, nil
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, scopeID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &apperrors.MissingAccountError{ScopeID: scopeID, Code: code}
		}
		return nil, fmt.Errorf("failed to resolve account %q in scope %s: %w", code, scopeID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %q in scope %s: %s", apperrors.ErrValidation, code, scopeID, ErrAccountInactive)
	}

	s.cachePut(scopeID, *account)
	return account, nil
}

// ResolveMany resolves a set of codes, keyed by code. The first unresolved
// code aborts the whole call; posting never silently under-posts a line.
func (s *accountService) ResolveMany(ctx context.Context, scopeID string, codes []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(codes))
	missing := make([]string, 0)
	for _, code := range codes {
		if _, seen := result[code]; seen {
			continue
		}
		if acc, ok := s.cacheGet(scopeID, code); ok {
			result[code] = *acc
		} else {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		fetched, err := s.accountRepo.FindAccountsByCodes(ctx, scopeID, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve accounts in scope %s: %w", scopeID, err)
		}
		for _, code := range missing {
			acc, ok := fetched[code]
			if !ok {
				return nil, &apperrors.MissingAccountError{ScopeID: scopeID, Code: code}
			}
			if !acc.IsActive {
				return nil, fmt.Errorf("%w: account %q in scope %s: %s", apperrors.ErrValidation, code, scopeID, ErrAccountInactive)
			}
			s.cachePut(scopeID, acc)
			result[code] = acc
		}
	}
	return result, nil
}

// CreateAccount adds an account to a scope's chart.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(req.AccountType)
	switch accountType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense:
	default:
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownAccountType, req.AccountType)
	}

	normalSide := domain.NormalSide(req.NormalSide)
	if normalSide == "" {
		normalSide = domain.DefaultNormalSide(accountType)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		ScopeID:         req.ScopeID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     accountType,
		NormalSide:      normalSide,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsActive:        true,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Account code already exists in scope", slog.String("scope_id", req.ScopeID), slog.String("code", req.Code))
			return nil, fmt.Errorf("%w: account code %q already exists in scope %s", apperrors.ErrDuplicate, req.Code, req.ScopeID)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("scope_id", req.ScopeID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.invalidateScope(req.ScopeID)
	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code), slog.String("scope_id", account.ScopeID))
	return &account, nil
}

// GetAccountByID retrieves an account, hiding accounts of other scopes.
func (s *accountService) GetAccountByID(ctx context.Context, scopeID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.ScopeID != scopeID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// ListAccounts retrieves a page of a scope's chart.
func (s *accountService) ListAccounts(ctx context.Context, scopeID string, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.accountRepo.ListAccounts(ctx, scopeID, limit, offset)
}

// UpdateAccount changes display fields. Code, scope and classification stay
// immutable once the account exists.
func (s *accountService) UpdateAccount(ctx context.Context, scopeID, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, scopeID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != account.Name {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = actorID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.invalidateScope(scopeID)
	return account, nil
}

// DeactivateAccount marks an account inactive; referenced accounts are never
// deleted.
func (s *accountService) DeactivateAccount(ctx context.Context, scopeID, accountID string, actorID string) error {
	if _, err := s.GetAccountByID(ctx, scopeID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, actorID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	s.invalidateScope(scopeID)
	return nil
}

func (s *accountService) cacheGet(scopeID, code string) (*domain.Account, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[scopeID][code]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	account := entry.account
	return &account, true
}

func (s *accountService) cachePut(scopeID string, account domain.Account) {
	if s.cacheTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	scopeCache, ok := s.cache[scopeID]
	if !ok {
		scopeCache = make(map[string]cachedAccount)
		s.cache[scopeID] = scopeCache
	}
	scopeCache[account.Code] = cachedAccount{account: account, expiresAt: time.Now().Add(s.cacheTTL)}
}

func (s *accountService) invalidateScope(scopeID string) {
	if s.cacheTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, scopeID)
}
