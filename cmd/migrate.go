package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <learner-id>",
	Short: "Migrate an eligible learner to the memory-model algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := engine.MigrateToMemory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if res.AlreadyOnIt {
			fmt.Println("learner is already on the memory model")
			return nil
		}
		fmt.Printf("migrated %d cards\n", res.CardsMigrated)
		return nil
	},
}
