package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank [own-posting-id]",
	Short: "Order the postings you browse by compatibility with one of your own postings",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	addFilterFlags(rankCmd)
	rankCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude jobs if already applied")
	rankCmd.Flags().String("ai-own", "", "id of the own posting the AI step compares candidates to")
}

func rank(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	e := setup(ctx, true)
	defer e.close()

	crit, err := criteria(e.config.Filters, filterFlags(cmd))
	if err != nil {
		e.logger.Fatal("parsing filters", zap.Error(err))
	}

	owned, err := e.client.GetOwned(ctx, e.session.Role)
	if err != nil {
		e.logger.Fatal("getting own postings", zap.Error(err))
	}

	board, err := ranking.New(e.client, e.session, terminalNotifier{w: os.Stderr}, e.logger)
	if err != nil {
		e.logger.Fatal("creating ranking board", zap.Error(err))
	}
	board.SetOwned(owned)
	// Ranked postings go through the same exclusions as the postings command.
	board.SetPipeline(prepareFilters(ctx, cmd, e, owned))

	var selected string
	if len(args) == 1 {
		selected = args[0]
	} else if owned.Len() > 0 {
		if selected, err = selectPosting("Choose your posting to rank by", owned); err != nil {
			e.logger.Fatal("selecting posting", zap.Error(err))
		}
	}

	// The board has already told the user what went wrong.
	if err := board.Rank(ctx, selected); err != nil {
		e.close()
		os.Exit(1)
	}

	if err := printPostings(e, board.Filtered(crit)); err != nil {
		e.logger.Fatal("printing postings", zap.Error(err))
	}
}
