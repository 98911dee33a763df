package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrPoolNotFound          = errors.Register(ModuleName, 1, "pool not found")
	ErrPoolAlreadyExists     = errors.Register(ModuleName, 2, "pool already exists")
	ErrObsoleteVersion       = errors.Register(ModuleName, 3, "obsolete rebalance version")
	ErrInvariantViolation    = errors.Register(ModuleName, 4, "invariant decreased")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 5, "insufficient liquidity")
	ErrInsufficientInput     = errors.Register(ModuleName, 6, "insufficient input received")
	ErrSlippageExceeded      = errors.Register(ModuleName, 7, "slippage limit exceeded")
	ErrReentrancy            = errors.Register(ModuleName, 8, "pool operation already in progress")
	ErrVersionDrift          = errors.Register(ModuleName, 9, "rebalance triggered during swap callback")
	ErrPriceDeviation        = errors.Register(ModuleName, 10, "execution price deviates from oracle")
	ErrZeroAmount            = errors.Register(ModuleName, 11, "amount must be positive")
	ErrUnauthorized          = errors.Register(ModuleName, 12, "unauthorized")
	ErrInvalidFeeRate        = errors.Register(ModuleName, 13, "fee rate out of bounds")
	ErrInvalidAmpl           = errors.Register(ModuleName, 14, "amplification out of bounds")
	ErrRampTooShort          = errors.Register(ModuleName, 15, "amplification ramp shorter than minimum")
	ErrRampChangeTooLarge    = errors.Register(ModuleName, 16, "amplification change exceeds bound")
	ErrUnknownCallback       = errors.Register(ModuleName, 17, "no swap callback registered for recipient")
	ErrUnknownTranche        = errors.Register(ModuleName, 18, "base tranche must be queen, bishop or rook")
	ErrNothingToCollect      = errors.Register(ModuleName, 19, "no admin fee accrued")
)
