package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <learner-id> <item-id>",
	Short: "Enroll a learner on an item for scheduled review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		card, err := engine.EnrollCard(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enrolled card %s (%s), due %s\n",
			card.ID, card.Algorithm, card.ScheduledAt.Format("2006-01-02"))
		return nil
	},
}
