package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name [new-name]",
		Short: "Show or change your display name",
		Long: `Show the name shown next to your messages, or change it.

An empty name restores the default.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) > 0 {
				a.ctrl.SetDisplayName(contextOf(cmd), strings.Join(args, " "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ctrl.DisplayName())
			return nil
		},
	}
}
