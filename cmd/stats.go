package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <learner-id>",
	Short: "Show learner card counts per mastery level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		cards, err := st.Cards().ListByLearner(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		counts := map[string]int{}
		for _, c := range cards {
			counts[c.MasteryLevel]++
		}
		levels := make([]string, 0, len(counts))
		for l := range counts {
			levels = append(levels, l)
		}
		sort.Strings(levels)

		fmt.Printf("%d cards\n", len(cards))
		for _, l := range levels {
			fmt.Printf("  %-10s %d\n", l, counts[l])
		}

		flagged, err := engine.FlaggedItems(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d items flagged for review\n", len(flagged))
		return nil
	},
}
