package cli

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/castleswap/tranche-dex/pkg/curve"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// PoolAddressInfo is a CLI-friendly pool escrow address
type PoolAddressInfo struct {
	PoolID  string `json:"pool_id"`
	Address string `json:"address"`
}

// CurvePreview is a CLI-friendly invariant solve result
type CurvePreview struct {
	Base      string `json:"base"`
	Quote     string `json:"quote"`
	Invariant string `json:"invariant"`
}

// GetQueryCmd returns the cli query commands for the swap module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "swap",
		Short:                      "Querying commands for the swap module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdPoolAddress(),
		CmdCurve(),
	)

	return cmd
}

// CmdPoolAddress returns the command to derive a pool's escrow address
func CmdPoolAddress() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool-address [pool-id]",
		Short: "Derive the escrow account address for a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := PoolAddressInfo{
				PoolID:  args[0],
				Address: types.PoolAddress(args[0]).String(),
			}

			output, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdCurve returns the command to solve the stableswap invariant offline
func CmdCurve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve [base] [quote] [ampl] [oracle-price]",
		Short: "Solve the stableswap invariant for given reserves",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]math.Int, 4)
			for i, arg := range args {
				v, ok := math.NewIntFromString(arg)
				if !ok || !v.IsPositive() {
					return fmt.Errorf("invalid amount: %s", arg)
				}
				values[i] = v
			}

			d, err := curve.SolveD(values[0], values[1], values[2], values[3])
			if err != nil {
				return err
			}

			preview := CurvePreview{
				Base:      values[0].String(),
				Quote:     values[1].String(),
				Invariant: d.String(),
			}

			output, _ := json.MarshalIndent(preview, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
