package cli

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// NavInfo is a CLI-friendly NAV breakdown
type NavInfo struct {
	Queen  string `json:"queen"`
	Bishop string `json:"bishop"`
	Rook   string `json:"rook"`
}

// GetQueryCmd returns the cli query commands for the fund module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "fund",
		Short:                      "Querying commands for the fund module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdExtrapolateNav(),
	)

	return cmd
}

// CmdExtrapolateNav returns the command to compute tranche NAVs from a price
func CmdExtrapolateNav() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav [price]",
		Short: "Compute QUEEN/BISHOP/ROOK NAVs from an 18-decimal QUEEN price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, ok := math.NewIntFromString(args[0])
			if !ok || price.IsNegative() {
				return fmt.Errorf("invalid price: %s", args[0])
			}

			unit := math.NewIntWithDecimal(1, 18)
			rook := price.MulRaw(2).Sub(unit)
			if rook.IsNegative() {
				rook = math.ZeroInt()
			}
			nav := NavInfo{
				Queen:  price.String(),
				Bishop: unit.String(),
				Rook:   rook.String(),
			}

			output, _ := json.MarshalIndent(nav, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
