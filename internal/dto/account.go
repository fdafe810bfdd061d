package dto

import (
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating a chart account.
type CreateAccountRequest struct {
	ScopeID         string `json:"scopeID" binding:"required,uuid"`
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	AccountType     string `json:"accountType" binding:"required,accounttype"`
	NormalSide      string `json:"normalSide" binding:"omitempty,entryside"`
	ParentAccountID string `json:"parentAccountID" binding:"omitempty,uuid"`
	Description     string `json:"description"`
}

// UpdateAccountRequest defines the updatable fields of an account. Code and
// scope are immutable once created.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	ScopeID         string          `json:"scopeID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	NormalSide      string          `json:"normalSide"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	Description     string          `json:"description,omitempty"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		ScopeID:         a.ScopeID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		NormalSide:      string(a.NormalSide),
		ParentAccountID: a.ParentAccountID,
		Description:     a.Description,
		IsActive:        a.IsActive,
		Balance:         a.Balance,
		CreatedAt:       a.CreatedAt,
		CreatedBy:       a.CreatedBy,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
