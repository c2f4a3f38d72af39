package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/session"
)

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Applications to your job posts (managers)",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()
		e.requireRole(posting.RoleManager, "list applications")

		apps, err := e.client.GetApplications(ctx)
		if err != nil {
			e.logger.Fatal("getting applications", zap.Error(err))
		}

		err = e.out.print(apps, func(w io.Writer) {
			for _, a := range apps {
				fmt.Fprintf(w, "%s %s / %s (%s) / %s\n", a.ID, a.Status, applicant(a), a.Student.Email, a.Job.JobDescription)
			}
			fmt.Fprintf(w, "%d applications\n", len(apps))
		})
		if err != nil {
			e.logger.Fatal("printing applications", zap.Error(err))
		}
	},
}

var applicationsApplyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a job (students)",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()
		e.requireRole(posting.RoleStudent, "apply")

		message, err := e.client.Apply(ctx, args[0])
		if err != nil {
			e.logger.Fatal("applying to job", zap.Error(err), zap.String("job_id", args[0]))
		}
		if err := session.RecordApplied(ctx, e.store, args[0]); err != nil {
			e.logger.Warn("recording applied job", zap.Error(err))
		}
		e.logger.Info("successfully applied to job", zap.String("job_id", args[0]), zap.String("message", message))
	},
}

var applicationsRespondCmd = &cobra.Command{
	Use:   "respond <application-id> [accepted|rejected]",
	Short: "Accept or reject an application (managers)",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()
		e.requireRole(posting.RoleManager, "respond to applications")

		status := ""
		if len(args) == 2 {
			status = args[1]
		} else {
			statusPrompt := promptui.Select{
				Label: "Answer",
				Items: []string{backend.ApplicationAccepted, backend.ApplicationRejected},
			}
			var err error
			if _, status, err = statusPrompt.Run(); err != nil {
				e.logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := e.client.RespondApplication(ctx, args[0], status); err != nil {
			e.logger.Fatal("responding to application", zap.Error(err), zap.String("application_id", args[0]))
		}
		e.logger.Info("application answered", zap.String("application_id", args[0]), zap.String("status", status))
	},
}

func init() {
	rootCmd.AddCommand(applicationsCmd)
	applicationsCmd.AddCommand(applicationsApplyCmd, applicationsRespondCmd)
}

func applicant(a *backend.Application) string {
	if a.Student.Name != "" {
		return a.Student.Name
	}
	return a.Student.ID
}
