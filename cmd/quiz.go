package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocardo/vocardo/internal/verify"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <learner-id> <concept-id>",
	Short: "Answer adaptively selected questions for a concept",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, st, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		learnerID, conceptID := args[0], args[1]
		count, _ := cmd.Flags().GetInt("count")
		reader := bufio.NewReader(os.Stdin)

		for i := 0; i < count; i++ {
			view, err := engine.NextItem(cmd.Context(), learnerID, conceptID)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", view.Question)
			for j, opt := range view.Options {
				fmt.Printf("  %d) %s\n", j+1, opt)
			}
			fmt.Print("answer: ")

			started := time.Now()
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			latency := time.Since(started).Milliseconds()

			choice, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || choice < 1 || choice > len(view.Options) {
				fmt.Println("pick an option number")
				i--
				continue
			}

			req := verify.AnswerRequest{
				LearnerID:     learnerID,
				ItemID:        view.ItemID,
				SelectedIndex: choice - 1,
				LatencyMs:     latency,
			}
			// Attach the learner's card, if enrolled, so the answer
			// also moves the schedule. Otherwise it is pure practice.
			if card, err := st.Cards().GetByLearnerItem(cmd.Context(), learnerID, view.ItemID); err == nil {
				req.CardID = card.ID
			}

			res, err := engine.SubmitItemAnswer(cmd.Context(), req)
			if err != nil {
				return err
			}

			if res.Correct {
				fmt.Println("correct!")
			} else {
				fmt.Printf("wrong, the answer was %d) %s\n",
					res.CorrectIndex+1, view.Options[res.CorrectIndex])
				if res.Explanation != "" {
					fmt.Println(res.Explanation)
				}
			}
			if res.Scheduling != nil {
				fmt.Printf("next review %s (rated %s)\n",
					res.Scheduling.NextDue.Format("2006-01-02"), res.Scheduling.Rating)
			}
		}
		return nil
	},
}

func init() {
	quizCmd.Flags().Int("count", 5, "Number of questions to ask")
}
