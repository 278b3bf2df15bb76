package cli

import (
	"fmt"
	"strconv"

	"github.com/kapu/player-generator-go/internal/seedcodec"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Convert seeds between numbers and URL codes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <number>",
		Short: "Encode an unsigned 64-bit seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q: %w", args[0], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), seedcodec.Encode(n))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <code>",
		Short: "Decode a seed code back to its number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := seedcodec.Decode(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	})

	RootCmd.AddCommand(cmd)
}
