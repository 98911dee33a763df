package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// GetTxCmd returns the transaction commands for the gauge module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "gauge",
		Short:                      "Gauge module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdClaim(),
		CmdNotifyBonus(),
	)

	return cmd
}

// CmdClaim returns the command to claim accrued gauge rewards
func CmdClaim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim [pool-id]",
		Short: "Claim accrued emission, bonus and escrowed distribution assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaim{
				Claimer: clientCtx.GetFromAddress().String(),
				PoolID:  args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdNotifyBonus returns the command to fund a bonus reward period
func CmdNotifyBonus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify-bonus [pool-id] [amount] [duration]",
		Short: "Fund a bonus reward stream over a duration in seconds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			duration, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid duration: %v", err)
			}

			msg := &types.MsgNotifyBonus{
				Funder:   clientCtx.GetFromAddress().String(),
				PoolID:   args[0],
				Amount:   args[1],
				Duration: duration,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
