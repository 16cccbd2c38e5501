package contribute

import "offsetScope/internal/model"

// RemainingTokens computes the project's remaining funding capacity
// from its required total and progress percentage. The division floors,
// matching the ledger's own integer progress arithmetic; the result can
// under-report true capacity by up to one token.
func RemainingTokens(requiredTokens, progress uint64) uint64 {
	if progress >= 100 {
		return 0
	}
	return requiredTokens * (100 - progress) / 100
}

// Validate checks a proposed contribution against live project state
// and the user's balance. Checks run in a fixed order so the caller
// always sees the first violated constraint: active, capacity, amount,
// balance.
func Validate(project model.Project, progress, balance, amount uint64) error {
	if !project.Active {
		return ErrProjectInactive
	}
	if progress >= 100 {
		return ErrProjectComplete
	}

	remaining := RemainingTokens(project.RequiredTokens, progress)
	if remaining == 0 {
		// Rounding can exhaust capacity before progress reads 100.
		return ErrProjectComplete
	}
	if amount == 0 || amount > remaining {
		return &InvalidAmountError{Amount: amount, Max: remaining}
	}
	if balance < amount {
		return &InsufficientBalanceError{Balance: balance, Amount: amount}
	}

	return nil
}
