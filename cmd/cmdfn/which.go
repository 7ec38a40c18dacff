// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"cmdfn/pkg/cmdfn"

	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <name> [name...]",
	Short: "Resolve command names to executable paths",
	Long: `Resolve command names to executable paths.

Names are looked up on PATH; a name containing underscores that does not
resolve is retried with hyphens, the same fallback the library applies.
Exits with status 1 when any name cannot be resolved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		missing := 0
		for _, name := range args {
			path := cmdfn.Which(name)
			if path == "" {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("not found: ")+name)
				missing++
				continue
			}
			fmt.Println(CmdStyle.Render(path))
		}
		if missing > 0 {
			return &ExitError{Code: 1, Err: fmt.Errorf("%d name(s) not resolved", missing)}
		}
		return nil
	},
}
