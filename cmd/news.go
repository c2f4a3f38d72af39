package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/utils"
)

const newsPreviewLength = 120

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the news feed",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		articles, err := e.client.GetNews(ctx)
		if err != nil {
			e.logger.Fatal("getting news", zap.Error(err))
		}

		err = e.out.print(articles, func(w io.Writer) {
			for _, a := range articles {
				fmt.Fprintf(w, "%s %s\n  %s\n", a.CreatedAt, a.Title, utils.TruncateForLog(a.Content, newsPreviewLength))
			}
		})
		if err != nil {
			e.logger.Fatal("printing news", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(newsCmd)
}
