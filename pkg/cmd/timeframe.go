package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/c9s/ohlcv/pkg/types"
)

func init() {
	RoundCmd.Flags().Bool("up", false, "round up to the next bucket boundary")
	RootCmd.AddCommand(TimeframeCmd)
	RootCmd.AddCommand(RoundCmd)
}

var TimeframeCmd = &cobra.Command{
	Use:     "timeframe <timeframe>",
	Short:   "print the seconds of a timeframe",
	Example: "ohlcv timeframe 4h",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := types.ParseTimeframe(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), seconds)
		return nil
	},
}

var RoundCmd = &cobra.Command{
	Use:     "round <timeframe> <timestamp_ms>",
	Short:   "round a millisecond timestamp to a timeframe boundary",
	Example: "ohlcv round 1h 1698623884463 --up",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		timestamp, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid millisecond timestamp %q", args[1])
		}

		up, err := cmd.Flags().GetBool("up")
		if err != nil {
			return err
		}

		direction := types.RoundDown
		if up {
			direction = types.RoundUp
		}

		rounded, err := types.RoundTimeframe(args[0], timestamp, direction)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rounded)
		return nil
	},
}
