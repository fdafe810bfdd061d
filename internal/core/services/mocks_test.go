package services_test

import (
	"context"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntriesBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntriesByScope(ctx context.Context, scopeID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, scopeID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, lines, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) AppendReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, originalEntryID string, actorID string, now time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, reversal, lines, balanceChanges, originalEntryID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock RuleRepository ---

type MockRuleRepository struct {
	mock.Mock
}

var _ portsrepo.RuleRepositoryFacade = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.PostingRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRule), args.Error(1)
}

func (m *MockRuleRepository) FindRuleByCode(ctx context.Context, scopeID, code string, at time.Time) (*domain.PostingRule, error) {
	args := m.Called(ctx, scopeID, code, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRule), args.Error(1)
}

func (m *MockRuleRepository) ListRules(ctx context.Context, scopeID string) ([]domain.PostingRule, error) {
	args := m.Called(ctx, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostingRule), args.Error(1)
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule domain.PostingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeactivateRule(ctx context.Context, ruleID string, actorID string, now time.Time) error {
	args := m.Called(ctx, ruleID, actorID, now)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, scopeID, code string) (*domain.Account, error) {
	args := m.Called(ctx, scopeID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, scopeID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, scopeID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, scopeID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, scopeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error {
	args := m.Called(ctx, accountID, actorID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, actorID, now)
	return args.Error(0)
}

// --- Mock AccountDirectory ---

type MockAccountDirectory struct {
	mock.Mock
}

var _ portssvc.AccountDirectory = (*MockAccountDirectory)(nil)

func (m *MockAccountDirectory) Resolve(ctx context.Context, scopeID, code string) (*domain.Account, error) {
	args := m.Called(ctx, scopeID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountDirectory) ResolveMany(ctx context.Context, scopeID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, scopeID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock OutboxRepository ---

type MockOutboxRepository struct {
	mock.Mock
}

var _ portsrepo.OutboxRepositoryFacade = (*MockOutboxRepository)(nil)

func (m *MockOutboxRepository) Enqueue(ctx context.Context, request domain.PostingRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int, maxAttempts int) ([]domain.PostingRequest, error) {
	args := m.Called(ctx, limit, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostingRequest), args.Error(1)
}

func (m *MockOutboxRepository) MarkSucceeded(ctx context.Context, requestID string, entryID string, now time.Time) error {
	args := m.Called(ctx, requestID, entryID, now)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, requestID string, reason string, now time.Time) error {
	args := m.Called(ctx, requestID, reason, now)
	return args.Error(0)
}

func (m *MockOutboxRepository) RecordTransientFailure(ctx context.Context, requestID string, reason string, now time.Time) error {
	args := m.Called(ctx, requestID, reason, now)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListRequests(ctx context.Context, scopeID string, status domain.PostingRequestStatus, limit int) ([]domain.PostingRequest, error) {
	args := m.Called(ctx, scopeID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostingRequest), args.Error(1)
}

// --- Mock PostingService ---

type MockPostingService struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

func (m *MockPostingService) Post(ctx context.Context, req dto.PostRequest, actorID string) (*domain.JournalEntry, bool, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.JournalEntry), args.Bool(1), args.Error(2)
}
