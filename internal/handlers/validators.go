package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
)

// RegisterCustomValidators installs the domain enum validations used by the
// request binding tags.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		switch domain.AccountType(fl.Field().String()) {
		case domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("entryside", func(fl validator.FieldLevel) bool {
		switch domain.EntrySide(fl.Field().String()) {
		case domain.DebitSide, domain.CreditSide:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("linekind", func(fl validator.FieldLevel) bool {
		switch domain.LineKind(fl.Field().String()) {
		case domain.FixedAccount, domain.LinkedAccount:
			return true
		}
		return false
	})
}
