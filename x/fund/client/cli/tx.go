package cli

import (
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// GetTxCmd returns the transaction commands for the fund module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "fund",
		Short:                      "Fund module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreate(),
		CmdRedeem(),
		CmdSplit(),
		CmdMerge(),
		CmdAddRebalance(),
		CmdSetOraclePrice(),
	)

	return cmd
}

// CmdCreate returns the command to mint QUEEN against the underlying
func CmdCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [underlying-amount]",
		Short: "Deposit the underlying and mint QUEEN shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgCreate{
				Owner:      clientCtx.GetFromAddress().String(),
				Underlying: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRedeem returns the command to redeem QUEEN for the underlying
func CmdRedeem() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem [amount]",
		Short: "Burn QUEEN shares and withdraw the underlying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgRedeem{
				Owner:  clientCtx.GetFromAddress().String(),
				Amount: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSplit returns the command to split QUEEN into BISHOP and ROOK
func CmdSplit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [amount]",
		Short: "Split QUEEN shares into equal BISHOP and ROOK shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSplit{
				Owner:  clientCtx.GetFromAddress().String(),
				Amount: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdMerge returns the command to merge BISHOP and ROOK into QUEEN
func CmdMerge() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [amount]",
		Short: "Merge equal BISHOP and ROOK shares back into QUEEN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgMerge{
				Owner:  clientCtx.GetFromAddress().String(),
				Amount: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdAddRebalance returns the command to append a rebalance record
func CmdAddRebalance() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-rebalance [ratio-queen] [ratio-tranche] [ratio-bishop-to-queen] [ratio-rook-to-queen]",
		Short: "Append a rebalance record to the fund ledger (authority only)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgAddRebalance{
				Authority:          clientCtx.GetFromAddress().String(),
				RatioQueen:         args[0],
				RatioTranche:       args[1],
				RatioBishopToQueen: args[2],
				RatioRookToQueen:   args[3],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetOraclePrice returns the command to set the oracle price
func CmdSetOraclePrice() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-oracle-price [price]",
		Short: "Set the QUEEN oracle price in 18-decimal fixed point (authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetOraclePrice{
				Authority: clientCtx.GetFromAddress().String(),
				Price:     args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
