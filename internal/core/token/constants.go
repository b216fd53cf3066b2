package token

// Chain-native token symbols.
const (
	// StakingSymbol is the governance/staking token.
	StakingSymbol = "SOUL"
	// FuelSymbol is the token transaction fees are paid in.
	FuelSymbol = "KCAL"

	StakingDecimals = 8
	FuelDecimals    = 10
)
