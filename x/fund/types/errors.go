package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrInvalidRatio        = errors.Register(ModuleName, 1, "invalid rebalance ratio")
	ErrVersionOutOfRange   = errors.Register(ModuleName, 2, "rebalance version out of range")
	ErrZeroAmount          = errors.Register(ModuleName, 3, "amount must be positive")
	ErrUnknownTranche      = errors.Register(ModuleName, 4, "unknown tranche denom")
	ErrOraclePriceNotSet   = errors.Register(ModuleName, 5, "oracle price not set")
	ErrInvalidOraclePrice  = errors.Register(ModuleName, 6, "oracle price must be positive")
	ErrUnauthorized        = errors.Register(ModuleName, 7, "unauthorized")
	ErrInsufficientBalance = errors.Register(ModuleName, 8, "insufficient tranche balance")
)
