package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/castleswap/tranche-dex/x/swap/types"
)

// GetTxCmd returns the transaction commands for the swap module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "swap",
		Short:                      "Swap module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreatePool(),
		CmdBuy(),
		CmdSell(),
		CmdAddLiquidity(),
		CmdRemoveLiquidity(),
		CmdRemoveBaseLiquidity(),
		CmdRemoveQuoteLiquidity(),
		CmdSync(),
		CmdSkim(),
		CmdCollectFee(),
		CmdSetFeeRate(),
		CmdRampAmpl(),
		CmdStopRampAmpl(),
	)

	return cmd
}

func parseVersion(arg string) (uint64, error) {
	version, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version: %v", err)
	}
	return version, nil
}

// CmdCreatePool returns the command to create a stableswap pool
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [pool-id] [base-tranche] [ampl] [fee-rate] [admin-fee-rate] [surcharge-rate] [cooling-off-period]",
		Short: "Create a stableswap pool for a tranche against the quote asset",
		Args:  cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			coolingOff, err := strconv.ParseInt(args[6], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid cooling-off period: %v", err)
			}

			msg := &types.MsgCreatePool{
				Owner:            clientCtx.GetFromAddress().String(),
				PoolID:           args[0],
				BaseTranche:      args[1],
				Ampl:             args[2],
				FeeRate:          args[3],
				AdminFeeRate:     args[4],
				SurchargeRate:    args[5],
				CoolingOffPeriod: coolingOff,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdBuy returns the command to buy the base tranche with quote
func CmdBuy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy [pool-id] [version] [base-out] [max-quote-in]",
		Short: "Buy an exact amount of the base tranche, paying quote",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			from := clientCtx.GetFromAddress().String()
			msg := &types.MsgBuy{
				Buyer:      from,
				PoolID:     args[0],
				Version:    version,
				BaseOut:    args[2],
				MaxQuoteIn: args[3],
				Recipient:  from,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSell returns the command to sell the base tranche for quote
func CmdSell() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell [pool-id] [version] [quote-out] [max-base-in]",
		Short: "Sell the base tranche for an exact amount of quote",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			from := clientCtx.GetFromAddress().String()
			msg := &types.MsgSell{
				Seller:    from,
				PoolID:    args[0],
				Version:   version,
				QuoteOut:  args[2],
				MaxBaseIn: args[3],
				Recipient: from,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdAddLiquidity returns the command to add liquidity
func CmdAddLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity [pool-id] [version] [base-in] [quote-in] [min-lp-out]",
		Short: "Deposit base and/or quote for LP shares",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			from := clientCtx.GetFromAddress().String()
			msg := &types.MsgAddLiquidity{
				Provider:  from,
				PoolID:    args[0],
				Version:   version,
				BaseIn:    args[2],
				QuoteIn:   args[3],
				MinLPOut:  args[4],
				Recipient: from,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRemoveLiquidity returns the command to remove liquidity proportionally
func CmdRemoveLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity [pool-id] [version] [lp-amount] [min-base-out] [min-quote-out]",
		Short: "Burn LP shares for a proportional slice of both sides",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			msg := &types.MsgRemoveLiquidity{
				Provider:    clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
				Version:     version,
				LPAmount:    args[2],
				MinBaseOut:  args[3],
				MinQuoteOut: args[4],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRemoveBaseLiquidity returns the command to exit into base only
func CmdRemoveBaseLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-base-liquidity [pool-id] [version] [lp-amount] [min-base-out]",
		Short: "Burn LP shares for the base tranche only",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			msg := &types.MsgRemoveBaseLiquidity{
				Provider:   clientCtx.GetFromAddress().String(),
				PoolID:     args[0],
				Version:    version,
				LPAmount:   args[2],
				MinBaseOut: args[3],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRemoveQuoteLiquidity returns the command to exit into quote only
func CmdRemoveQuoteLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-quote-liquidity [pool-id] [version] [lp-amount] [min-quote-out]",
		Short: "Burn LP shares for the quote asset only",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			version, err := parseVersion(args[1])
			if err != nil {
				return err
			}

			msg := &types.MsgRemoveQuoteLiquidity{
				Provider:    clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
				Version:     version,
				LPAmount:    args[2],
				MinQuoteOut: args[3],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSync returns the command to sync a pool
func CmdSync() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [pool-id]",
		Short: "Apply any pending rebalance and reconcile pool balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSync{
				Caller: clientCtx.GetFromAddress().String(),
				PoolID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSkim returns the command to skim escrow surplus
func CmdSkim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skim [pool-id]",
		Short: "Pay escrow surplus above the recorded reserves to the pool owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSkim{
				Owner:  clientCtx.GetFromAddress().String(),
				PoolID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCollectFee returns the command to collect the admin fee
func CmdCollectFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect-fee [pool-id]",
		Short: "Collect the accumulated admin fee (pool owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgCollectFee{
				Owner:  clientCtx.GetFromAddress().String(),
				PoolID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetFeeRate returns the command to update fee rates
func CmdSetFeeRate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee-rate [pool-id] [fee-rate] [admin-fee-rate]",
		Short: "Update a pool's trading and admin fee rates (pool owner only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetFeeRate{
				Owner:        clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				FeeRate:      args[1],
				AdminFeeRate: args[2],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRampAmpl returns the command to start an amplification ramp
func CmdRampAmpl() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ramp-ampl [pool-id] [target-ampl] [end-timestamp]",
		Short: "Start a linear amplification ramp (pool owner only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			endTimestamp, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid end timestamp: %v", err)
			}

			msg := &types.MsgRampAmpl{
				Owner:        clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				TargetAmpl:   args[1],
				EndTimestamp: endTimestamp,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdStopRampAmpl returns the command to freeze the amplification
func CmdStopRampAmpl() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop-ramp-ampl [pool-id]",
		Short: "Freeze the amplification at its current value (pool owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgStopRampAmpl{
				Owner:  clientCtx.GetFromAddress().String(),
				PoolID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
