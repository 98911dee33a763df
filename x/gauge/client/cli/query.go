package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// EmissionInfo is a CLI-friendly emission rate preview
type EmissionInfo struct {
	Timestamp int64  `json:"timestamp"`
	Rate      string `json:"rate"`
	Weekly    string `json:"weekly"`
}

// GetQueryCmd returns the cli query commands for the gauge module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "gauge",
		Short:                      "Querying commands for the gauge module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdEmissionRate(),
	)

	return cmd
}

// CmdEmissionRate returns the command to preview the emission rate
func CmdEmissionRate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emission-rate [start] [initial-rate] [halving-weeks] [max-halvings] [timestamp]",
		Short: "Preview the halving emission rate at a unix timestamp",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid start: %v", err)
			}
			initialRate, ok := math.NewIntFromString(args[1])
			if !ok || initialRate.IsNegative() {
				return fmt.Errorf("invalid initial rate: %s", args[1])
			}
			halvingWeeks, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid halving weeks: %v", err)
			}
			maxHalvings, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid max halvings: %v", err)
			}
			timestamp, err := strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %v", err)
			}

			schedule := types.HalvingSchedule{
				StartTimestamp: start,
				InitialRate:    initialRate,
				HalvingWeeks:   halvingWeeks,
				MaxHalvings:    maxHalvings,
			}
			rate := schedule.Rate(timestamp)

			info := EmissionInfo{
				Timestamp: timestamp,
				Rate:      rate.String(),
				Weekly:    rate.MulRaw(types.RewardWeek).String(),
			}

			output, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
