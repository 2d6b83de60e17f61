package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flaggedCmd = &cobra.Command{
	Use:   "flagged",
	Short: "List items flagged for content review",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		flagged, err := engine.FlaggedItems(cmd.Context())
		if err != nil {
			return err
		}
		if len(flagged) == 0 {
			fmt.Println("no flagged items")
			return nil
		}
		for _, s := range flagged {
			fmt.Printf("%s  reason=%s  attempts=%d  difficulty=%.2f  discrimination=%.2f\n",
				s.ItemID, s.FlagReason, s.Attempts, s.Difficulty, s.Discrimination)
		}
		return nil
	},
}
