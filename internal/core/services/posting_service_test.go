package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PostingServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockRuleRepo    *MockRuleRepository
	mockDirectory   *MockAccountDirectory
	service         portssvc.PostingSvcFacade

	scopeID        string
	actorID        string
	sourceID       string
	expenseAccount domain.Account
	payableAccount domain.Account
	taxAccount     domain.Account
	rule           *domain.PostingRule
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockRuleRepo = new(MockRuleRepository)
	suite.mockDirectory = new(MockAccountDirectory)
	suite.service = services.NewPostingService(suite.mockJournalRepo, suite.mockRuleRepo, suite.mockDirectory)

	suite.scopeID = uuid.NewString()
	suite.actorID = uuid.NewString()
	suite.sourceID = uuid.NewString()

	suite.expenseAccount = domain.Account{
		AccountID:   uuid.NewString(),
		ScopeID:     suite.scopeID,
		Code:        "5100",
		AccountType: domain.Expense,
		NormalSide:  domain.DebitNormal,
		IsActive:    true,
	}
	suite.payableAccount = domain.Account{
		AccountID:   uuid.NewString(),
		ScopeID:     suite.scopeID,
		Code:        "2100",
		AccountType: domain.Liability,
		NormalSide:  domain.CreditNormal,
		IsActive:    true,
	}
	suite.taxAccount = domain.Account{
		AccountID:   uuid.NewString(),
		ScopeID:     suite.scopeID,
		Code:        "2310",
		AccountType: domain.Liability,
		NormalSide:  domain.CreditNormal,
		IsActive:    true,
	}

	suite.rule = &domain.PostingRule{
		RuleID:        uuid.NewString(),
		ScopeID:       suite.scopeID,
		Code:          "PAYROLL_ACCRUAL",
		Name:          "Payroll accrual",
		Version:       1,
		EffectiveFrom: time.Now().UTC().Add(-24 * time.Hour),
		IsActive:      true,
		Lines: []domain.LineTemplate{
			{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "gross"},
			{Kind: domain.FixedAccount, AccountCode: "2310", Side: domain.CreditSide, AmountField: "tax"},
			{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "net"},
		},
	}
}

func (suite *PostingServiceTestSuite) postRequest(amounts map[string]decimal.Decimal) dto.PostRequest {
	return dto.PostRequest{
		ScopeID:    suite.scopeID,
		Stage:      "payroll_accrual",
		SourceType: "payroll_run",
		SourceID:   suite.sourceID,
		Amounts:    amounts,
	}
}

func (suite *PostingServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{
		"gross": decimal.RequireFromString("1000.00"),
		"tax":   decimal.RequireFromString("150.00"),
		"net":   decimal.RequireFromString("850.00"),
	})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"5100", "2310", "2100"}).Return(map[string]domain.Account{
		"5100": suite.expenseAccount,
		"2310": suite.taxAccount,
		"2100": suite.payableAccount,
	}, nil).Once()

	suite.mockJournalRepo.On("AppendEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(domain.JournalEntry)
			lines := args.Get(2).([]domain.JournalLine)
			changes := args.Get(3).(map[string]decimal.Decimal)

			suite.Equal(key, entry.IdempotencyKey)
			suite.Equal(domain.Posted, entry.Status)
			suite.True(entry.TotalDebit.Equal(decimal.RequireFromString("1000.00")))
			suite.True(entry.TotalCredit.Equal(decimal.RequireFromString("1000.00")))
			suite.Len(lines, 3)

			// Balance deltas follow each account's normal side.
			suite.True(changes[suite.expenseAccount.AccountID].Equal(decimal.RequireFromString("1000.00")))
			suite.True(changes[suite.taxAccount.AccountID].Equal(decimal.RequireFromString("150.00")))
			suite.True(changes[suite.payableAccount.AccountID].Equal(decimal.RequireFromString("850.00")))
		}).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), EntryNo: 7, IdempotencyKey: key, Status: domain.Posted}, nil).Once()

	entry, alreadyPosted, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(alreadyPosted)
	suite.Require().NotNil(entry)
	suite.Equal(int64(7), entry.EntryNo)
	suite.Len(entry.Lines, 3)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockRuleRepo.AssertExpectations(suite.T())
	suite.mockDirectory.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPost_IdempotentHitReturnsOriginal() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{"gross": decimal.NewFromInt(999)})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	existing := &domain.JournalEntry{EntryID: uuid.NewString(), IdempotencyKey: key, Status: domain.Posted}
	existingLines := []domain.JournalLine{{LineID: uuid.NewString(), EntryID: existing.EntryID}}

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(existing, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, existing.EntryID).Return(existingLines, nil).Once()

	entry, alreadyPosted, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(alreadyPosted)
	suite.Equal(existing.EntryID, entry.EntryID)
	suite.Len(entry.Lines, 1)
	// The differing amounts in the retry are ignored: no rule evaluation, no
	// append.
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "FindRuleByCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_MissingAccountFailsWithoutWriting() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{
		"gross": decimal.NewFromInt(100),
		"tax":   decimal.NewFromInt(10),
		"net":   decimal.NewFromInt(90),
	})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"5100", "2310", "2100"}).
		Return(nil, &apperrors.MissingAccountError{ScopeID: suite.scopeID, Code: "2310"}).Once()

	_, _, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	var missing *apperrors.MissingAccountError
	suite.Require().ErrorAs(err, &missing)
	suite.Equal("2310", missing.Code)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_UnbalancedAmountsRejected() {
	ctx := context.Background()
	// tax + net != gross: the rule's sides will not balance.
	req := suite.postRequest(map[string]decimal.Decimal{
		"gross": decimal.NewFromInt(100),
		"tax":   decimal.NewFromInt(10),
		"net":   decimal.NewFromInt(80),
	})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"5100", "2310", "2100"}).Return(map[string]domain.Account{
		"5100": suite.expenseAccount,
		"2310": suite.taxAccount,
		"2100": suite.payableAccount,
	}, nil).Once()

	_, _, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	var unbalanced *apperrors.UnbalancedEntryError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.True(unbalanced.TotalDebit.Equal(decimal.NewFromInt(100)))
	suite.True(unbalanced.TotalCredit.Equal(decimal.NewFromInt(90)))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_RaceLoserReturnsWinningEntry() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{
		"gross": decimal.NewFromInt(100),
		"tax":   decimal.NewFromInt(10),
		"net":   decimal.NewFromInt(90),
	})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)
	winner := &domain.JournalEntry{EntryID: uuid.NewString(), IdempotencyKey: key, Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"5100", "2310", "2100"}).Return(map[string]domain.Account{
		"5100": suite.expenseAccount,
		"2310": suite.taxAccount,
		"2100": suite.payableAccount,
	}, nil).Once()
	suite.mockJournalRepo.On("AppendEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(winner, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, winner.EntryID).Return([]domain.JournalLine{}, nil).Once()

	entry, alreadyPosted, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(alreadyPosted)
	suite.Equal(winner.EntryID, entry.EntryID)
}

func (suite *PostingServiceTestSuite) TestPost_LinkedAccountResolution() {
	ctx := context.Background()
	suite.rule.Lines = []domain.LineTemplate{
		{Kind: domain.LinkedAccount, LinkKey: "bank", Side: domain.DebitSide, AmountField: "amount"},
		{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "amount"},
	}
	bankAccount := domain.Account{
		AccountID:  uuid.NewString(),
		ScopeID:    suite.scopeID,
		Code:       "1110",
		NormalSide: domain.DebitNormal,
		IsActive:   true,
	}

	req := suite.postRequest(map[string]decimal.Decimal{"amount": decimal.NewFromInt(500)})
	req.AccountLinks = map[string]string{"bank": "1110"}
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"1110", "2100"}).Return(map[string]domain.Account{
		"1110": bankAccount,
		"2100": suite.payableAccount,
	}, nil).Once()
	suite.mockJournalRepo.On("AppendEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			lines := args.Get(2).([]domain.JournalLine)
			suite.Require().Len(lines, 2)
			suite.Equal(bankAccount.AccountID, lines[0].AccountID)
		}).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()

	_, alreadyPosted, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(alreadyPosted)
}

func (suite *PostingServiceTestSuite) TestPost_MissingAccountLinkRejected() {
	ctx := context.Background()
	suite.rule.Lines = []domain.LineTemplate{
		{Kind: domain.LinkedAccount, LinkKey: "bank", Side: domain.DebitSide, AmountField: "amount"},
		{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "amount"},
	}
	req := suite.postRequest(map[string]decimal.Decimal{"amount": decimal.NewFromInt(500)})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()

	_, _, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "bank")
	suite.mockDirectory.AssertNotCalled(suite.T(), "ResolveMany", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_NoRuleForStage() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{"gross": decimal.NewFromInt(1)})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestPost_StorageFaultPropagates() {
	ctx := context.Background()
	req := suite.postRequest(map[string]decimal.Decimal{
		"gross": decimal.NewFromInt(100),
		"tax":   decimal.NewFromInt(10),
		"net":   decimal.NewFromInt(90),
	})
	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)
	storageErr := errors.New("connection reset")

	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRuleRepo.On("FindRuleByCode", ctx, suite.scopeID, "PAYROLL_ACCRUAL", mock.AnythingOfType("time.Time")).Return(suite.rule, nil).Once()
	suite.mockDirectory.On("ResolveMany", ctx, suite.scopeID, []string{"5100", "2310", "2100"}).Return(map[string]domain.Account{
		"5100": suite.expenseAccount,
		"2310": suite.taxAccount,
		"2100": suite.payableAccount,
	}, nil).Once()
	suite.mockJournalRepo.On("AppendEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Return(nil, storageErr).Once()

	_, _, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, storageErr)
	suite.False(apperrors.IsFatalPostingError(err))
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
