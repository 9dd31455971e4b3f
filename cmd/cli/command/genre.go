package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres books can be filed under",
		RunE: func(cmd *cobra.Command, args []string) error {
			genres, err := a.client.ListGenres(cmd.Context())
			if err != nil {
				return a.fail("failed to get genres", err)
			}
			for _, g := range genres {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}
