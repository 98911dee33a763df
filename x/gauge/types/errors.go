package types

import (
	"cosmossdk.io/errors"
)

// Gauge module errors
var (
	ErrZeroAmount          = errors.Register(ModuleName, 1, "amount must be positive")
	ErrInsufficientBalance = errors.Register(ModuleName, 2, "insufficient gauge balance")
	ErrNothingToClaim      = errors.Register(ModuleName, 3, "nothing to claim")
	ErrUnauthorized        = errors.Register(ModuleName, 4, "unauthorized")
	ErrInvalidDistribution = errors.Register(ModuleName, 5, "invalid distribution")
	ErrBonusPeriodActive   = errors.Register(ModuleName, 6, "bonus period still active")
)
