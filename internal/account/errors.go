package account

import "codeberg.org/mutker/wattd/internal/errors"

const (
	ErrInvalidOptions = errors.ErrorCode("account_invalid_options")
	ErrInvalidProfile = errors.ErrorCode("account_invalid_profile")
	ErrInvalidBudget  = errors.ErrorCode("account_invalid_budget")
	ErrPersist        = errors.ErrorCode("account_persist_failed")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidOptions: "Invalid account options",
		ErrInvalidProfile: "Invalid profile",
		ErrInvalidBudget:  "Budget needs a positive limit and a cycle of at least one week",
		ErrPersist:        "Failed to persist account data",
	})
}
