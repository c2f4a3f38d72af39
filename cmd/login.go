package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/logger"
	"github.com/spigell/shiftmatch/internal/secrets"
	"github.com/spigell/shiftmatch/internal/session"
)

const passwordEnv = "SHIFTMATCH_PASSWORD"

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the token, user id and role",
	Run: func(cmd *cobra.Command, _ []string) {
		login(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(_ *cobra.Command, _ []string) {
		logout()
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringP("email", "e", "", "account email; asked interactively when empty")
	loginCmd.Flags().String("password-file", "", "file with the password; "+passwordEnv+" or an interactive prompt are used otherwise")
}

func login(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx, false)
	defer e.close()

	email, _ := cmd.Flags().GetString("email")
	if strings.TrimSpace(email) == "" {
		var err error
		email, err = (&promptui.Prompt{Label: "Email", Validate: notEmpty}).Run()
		if err != nil {
			e.logger.Fatal("reading email", zap.Error(err))
		}
	}

	passwordFile, _ := cmd.Flags().GetString("password-file")
	password, err := secrets.Load(secrets.Source{
		Name: "password",
		File: passwordFile,
		Env:  passwordEnv,
	})
	if err != nil {
		password, err = (&promptui.Prompt{Label: "Password", Mask: '*', Validate: notEmpty}).Run()
		if err != nil {
			e.logger.Fatal("reading password", zap.Error(err))
		}
	}

	sess, err := e.client.Login(ctx, email, password)
	if err != nil {
		e.logger.Fatal("signing in", zap.Error(err), zap.String("email", strings.TrimSpace(email)))
	}

	if err := session.Save(ctx, e.store, sess); err != nil {
		e.logger.Fatal("saving session", zap.Error(err))
	}

	logger.WithSession(e.logger, string(sess.Role), sess.UserID, e.config.APIURL).Info("signed in")
}

func logout() {
	ctx := context.Background()
	e := setup(ctx, false)
	defer e.close()

	if err := session.Clear(ctx, e.store); err != nil {
		e.logger.Fatal("clearing session", zap.Error(err))
	}

	e.logger.Info("signed out")
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami [user-id]",
	Short: "Show your profile or the profile of another user",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		var (
			user *backend.User
			err  error
		)
		if len(args) == 1 {
			user, err = e.client.GetUser(ctx, args[0])
		} else {
			user, err = e.client.CurrentUser(ctx)
		}
		if err != nil {
			e.logger.Fatal("getting user profile", zap.Error(err))
		}

		err = e.out.print(user, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s <%s> %s\n", user.ID, user.Name, user.Email, user.Role)
			if user.Company != "" {
				fmt.Fprintf(w, "company: %s\n", user.Company)
			}
			if user.Major != "" {
				fmt.Fprintf(w, "major: %s\n", user.Major)
			}
		})
		if err != nil {
			e.logger.Fatal("printing user profile", zap.Error(err))
		}
	},
}
