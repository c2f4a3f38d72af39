package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/posting"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Manage your own postings: job posts for managers, requests for students",
}

var mineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your postings",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		owned, err := e.client.GetOwned(ctx, e.session.Role)
		if err != nil {
			e.logger.Fatal("getting own postings", zap.Error(err))
		}
		if err := printPostings(e, owned); err != nil {
			e.logger.Fatal("printing postings", zap.Error(err))
		}
	},
}

var mineCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new posting",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		draft, err := draftFromFlags(cmd)
		if err != nil {
			e.logger.Fatal("parsing posting", zap.Error(err))
		}
		if err := e.client.CreateOwned(ctx, e.session.Role, draft); err != nil {
			e.logger.Fatal("creating posting", zap.Error(err))
		}
		e.logger.Info("posting created", zap.String("kind", string(e.session.Role.Owns())))
	},
}

var mineUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the location, description and availability of a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		draft, err := draftFromFlags(cmd)
		if err != nil {
			e.logger.Fatal("parsing posting", zap.Error(err))
		}
		if err := e.client.UpdateOwned(ctx, e.session.Role, args[0], draft); err != nil {
			e.logger.Fatal("updating posting", zap.Error(err), zap.String("id", args[0]))
		}
		e.logger.Info("posting updated", zap.String("id", args[0]))
	},
}

var mineDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		if err := e.client.DeleteOwned(ctx, e.session.Role, args[0]); err != nil {
			e.logger.Fatal("deleting posting", zap.Error(err), zap.String("id", args[0]))
		}
		e.logger.Info("posting deleted", zap.String("id", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.AddCommand(mineListCmd, mineCreateCmd, mineUpdateCmd, mineDeleteCmd)

	for _, cmd := range []*cobra.Command{mineCreateCmd, mineUpdateCmd} {
		cmd.Flags().StringP("location", "l", "", "where the work happens")
		cmd.Flags().StringP("experience", "x", "", "job description (managers) or former experience (students)")
		cmd.Flags().StringToString("availability", nil, "day=time range pairs, e.g. Monday=9am-5pm,Saturday=10-2")
	}
}

func draftFromFlags(cmd *cobra.Command) (backend.Draft, error) {
	location, _ := cmd.Flags().GetString("location")
	experience, _ := cmd.Flags().GetString("experience")
	slots, _ := cmd.Flags().GetStringToString("availability")

	availability, err := parseAvailability(slots)
	if err != nil {
		return backend.Draft{}, err
	}

	if strings.TrimSpace(location) == "" || strings.TrimSpace(experience) == "" {
		return backend.Draft{}, fmt.Errorf("--location and --experience are required")
	}

	return backend.Draft{
		Location:     strings.TrimSpace(location),
		Experience:   strings.TrimSpace(experience),
		Availability: availability,
	}, nil
}

func parseAvailability(slots map[string]string) (posting.Availability, error) {
	availability := make(posting.Availability, len(slots))
	for label, hours := range slots {
		day, err := posting.ParseDay(label)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(hours) == "" {
			return nil, fmt.Errorf("time range for %s is empty", day)
		}
		availability[day] = strings.TrimSpace(hours)
	}
	return availability, nil
}
