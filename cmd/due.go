package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due <learner-id>",
	Short: "List the learner's cards due for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		due, err := engine.DueCards(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("nothing due")
			return nil
		}
		for _, d := range due {
			line := fmt.Sprintf("%s  item=%s  concept=%s  overdue=%.1fd  mastery=%s",
				d.Card.ID, d.Card.ItemID, d.ConceptID, d.DaysOverdue, d.Card.MasteryLevel)
			if d.PredictedRetention != nil {
				line += fmt.Sprintf("  retention=%.2f", *d.PredictedRetention)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	dueCmd.Flags().Int("limit", 0, "Maximum number of cards (0 = configured default)")
}
