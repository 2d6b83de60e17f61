package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vocardo/vocardo/internal/srs"
)

var reviewCmd = &cobra.Command{
	Use:   "review <card-id> <rating>",
	Short: "Apply a rated review to a card (0=again 1=hard 2=good 3=easy 4=perfect)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}

		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := engine.SubmitReview(cmd.Context(), args[0], srs.Rating(rating), 0)
		if err != nil {
			return err
		}
		fmt.Printf("next due %s (interval %dd, mastery %s)\n",
			res.NextDue.Format("2006-01-02"), res.IntervalDays, res.MasteryLevel)
		if res.BecameLeech {
			fmt.Println("card is now a leech")
		}
		return nil
	},
}
