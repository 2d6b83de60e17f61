package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var algorithmCmd = &cobra.Command{
	Use:   "algorithm <learner-id>",
	Short: "Show the learner's scheduling algorithm assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := engine.Assignment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("algorithm=%s reason=%s reviews=%d can_migrate=%t\n",
			a.Algorithm, a.Reason, a.ReviewCount, a.CanMigrate)
		if !a.MigratedAt.IsZero() {
			fmt.Printf("migrated %s\n", a.MigratedAt.Format("2006-01-02"))
		}
		return nil
	},
}
