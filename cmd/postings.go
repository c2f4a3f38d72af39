package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/ai"
	"github.com/spigell/shiftmatch/internal/ai/gemini"
	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/filtering"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/ranking"
	"github.com/spigell/shiftmatch/internal/secrets"
	"github.com/spigell/shiftmatch/internal/session"
)

const (
	PromptShow                = "Show postings"
	PromptRank                = "Rank by one of my postings"
	PromptToggleDay           = "Toggle a required day"
	PromptReportByLocation    = "Report by location"
	PromptManualApply         = "Apply to jobs in manual mode"
	PromptPostingsToFile      = "Dump postings to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
)

var errExit = errors.New("exit requested")

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Browse jobs (students) or requests (managers), filter and rank them",
	Run: func(cmd *cobra.Command, _ []string) {
		browse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(postingsCmd)

	addFilterFlags(postingsCmd)
	postingsCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude jobs if already applied")
	postingsCmd.Flags().BoolP("yes", "y", false, "print the filtered postings and exit without prompting")
	postingsCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	postingsCmd.Flags().String("ai-own", "", "id of the own posting the AI step compares candidates to")

	viper.BindPFlag("exclude-file", postingsCmd.Flags().Lookup("exclude-file"))
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("location", "l", "", "keep postings whose location contains this text")
	cmd.Flags().StringP("experience", "x", "", "keep postings whose job type or experience contains this text")
	cmd.Flags().StringP("gender", "g", "", "keep requests from students of this gender (managers only)")
	cmd.Flags().StringSlice("day", nil, "keep postings available on every given day (repeatable)")
}

func filterFlags(cmd *cobra.Command) *FiltersConfig {
	flags := &FiltersConfig{}
	flags.Location, _ = cmd.Flags().GetString("location")
	flags.Experience, _ = cmd.Flags().GetString("experience")
	flags.Gender, _ = cmd.Flags().GetString("gender")
	flags.Days, _ = cmd.Flags().GetStringSlice("day")
	return flags
}

// browse is the main interactive command for the cli.
func browse(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx, true)
	defer e.close()

	if e.session.Role == "" {
		e.logger.Fatal("role is unknown", zap.String("hint", "log in again so the role is stored"))
	}

	e.logger.Info("starting the shiftmatch", zap.String("version", version))

	crit, err := criteria(e.config.Filters, filterFlags(cmd))
	if err != nil {
		e.logger.Fatal("parsing filters", zap.Error(err))
	}

	postings, err := e.client.GetBrowsable(ctx, e.session.Role)
	if err != nil {
		e.logger.Fatal("getting postings", zap.Error(err))
	}
	e.logger.Info("getting postings", zap.Int("count", postings.Len()), zap.String("kind", string(e.session.Role.Browses())))

	if postings.Len() == 0 {
		e.logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	owned, err := e.client.GetOwned(ctx, e.session.Role)
	if err != nil {
		e.logger.Fatal("getting own postings", zap.Error(err))
	}

	filters := prepareFilters(ctx, cmd, e, owned)
	for _, status := range filtering.Describe(filters.Steps()) {
		e.logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	filtered, err := filters.RunFilters(ctx, postings)
	if err != nil {
		e.logger.Fatal("filtering failed", zap.Error(err))
	}

	board, err := ranking.New(e.client, e.session, terminalNotifier{w: os.Stderr}, e.logger)
	if err != nil {
		e.logger.Fatal("creating ranking board", zap.Error(err))
	}
	board.Replace(filtered)
	board.SetOwned(owned)
	board.SetPipeline(filters)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		if err := printPostings(e, board.Filtered(crit)); err != nil {
			e.logger.Fatal("printing postings", zap.Error(err))
		}
		return
	}

	items := []string{PromptShow, PromptRank, PromptToggleDay, PromptReportByLocation, PromptPostingsToFile}
	if e.session.Role == posting.RoleStudent {
		items = append(items, PromptManualApply)
	}
	prompt := promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}

		e.logger.Info("current list of postings", zap.Int("count", board.Filtered(crit).Len()))

		if err := handleAction(ctx, action, e, board, owned, crit); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			e.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, e *env, board *ranking.Board, owned *posting.Postings, crit posting.Criteria) error {
	switch action {
	case PromptShow:
		return printPostings(e, board.Filtered(crit))
	case PromptRank:
		var selected string
		if owned.Len() > 0 {
			var err error
			selected, err = selectPosting("Choose your posting to rank by", owned)
			if err != nil || selected == "" {
				return err
			}
		}
		// Failures, a missing selection included, are reported by the board; the list stays as it was.
		if err := board.Rank(ctx, selected); err != nil {
			return nil
		}
		return printPostings(e, board.Filtered(crit))
	case PromptToggleDay:
		return toggleDay(crit)
	case PromptReportByLocation:
		filtered := board.Filtered(crit)
		return e.out.print(filtered.ReportByLocation(), func(w io.Writer) {
			for location, entries := range filtered.ReportByLocation() {
				fmt.Fprintf(w, "%s: %d\n", location, len(entries))
			}
		})
	case PromptPostingsToFile:
		filename, err := board.Filtered(crit).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		e.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptManualApply:
		return manualApply(ctx, e, board, crit)
	case PromptExit:
		e.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// toggleDay flips one required day; crit.Days is shared with the caller.
func toggleDay(crit posting.Criteria) error {
	labels := make([]string, 0, len(posting.Days))
	for _, day := range posting.Days {
		mark := "[ ]"
		if crit.Days[day] {
			mark = "[x]"
		}
		labels = append(labels, fmt.Sprintf("%s %s", mark, day))
	}

	dayPrompt := promptui.Select{
		Label: "Toggle a day and press ENTER",
		Items: labels,
	}
	idx, _, err := dayPrompt.Run()
	if err != nil {
		return err
	}

	crit.Days.Toggle(posting.Days[idx])
	return nil
}

func manualApply(ctx context.Context, e *env, board *ranking.Board, crit posting.Criteria) error {
	for {
		jobs := board.Filtered(crit)

		items := make([]string, 0, jobs.Len()+2)
		for _, item := range jobs.Items {
			items = append(items, item.Label())
		}

		excludeFile := viper.GetString("exclude-file")
		if excludeFile != "" && jobs.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}

		if idx < jobs.Len() {
			if err := applyAndHide(ctx, e, board, jobs.Items[idx]); err != nil {
				return err
			}
			continue
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			excluded, err := posting.ReadFile(excludeFile)
			if errors.Is(err, os.ErrNotExist) {
				excluded, err = posting.NewPostings(), nil
			}
			if err != nil {
				return err
			}

			excluded.Append(jobs)

			if err = excluded.ToFile(excludeFile); err != nil {
				return err
			}

			e.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

			board.Replace(board.Displayed().Keep(func(p *posting.Posting) bool {
				return excluded.FindByID(p.ID()) == nil
			}))
		default:
			return fmt.Errorf("invalid choice: %s", selected)
		}
	}
}

// applyAndHide applies to job and removes that exact posting from the board.
func applyAndHide(ctx context.Context, e *env, board *ranking.Board, job *posting.Posting) error {
	if err := apply(ctx, e, job); err != nil {
		return err
	}
	board.Replace(board.Displayed().Without(job))
	return nil
}

// apply sends the application and records it so applied_history skips the job next time.
func apply(ctx context.Context, e *env, job *posting.Posting) error {
	message, err := e.client.Apply(ctx, job.ID())
	if err != nil {
		return err
	}

	if err := session.RecordApplied(ctx, e.store, job.ID()); err != nil {
		e.logger.Warn("recording applied job", zap.Error(err), zap.String("job_id", job.ID()))
	}

	e.logger.Info("successfully applied to job",
		zap.String("job_id", job.ID()),
		zap.String("job_description", job.Experience()),
		zap.String("message", message),
	)
	return nil
}

// selectPosting asks for one of the postings and returns its id, or "" on back.
func selectPosting(label string, p *posting.Postings) (string, error) {
	if p.Len() == 0 {
		return "", errors.New("you have no postings yet: create one with the mine command")
	}

	items := make([]string, 0, p.Len()+1)
	for _, item := range p.Items {
		items = append(items, item.Label())
	}

	selectPrompt := promptui.Select{
		Label: label,
		Items: append(items, PromptBack),
	}
	idx, selected, err := selectPrompt.Run()
	if err != nil {
		return "", err
	}
	if selected == PromptBack {
		return "", nil
	}
	return p.Items[idx].ID(), nil
}

func printPostings(e *env, p *posting.Postings) error {
	return e.out.print(p, func(w io.Writer) {
		for _, item := range p.Items {
			line := item.Label()
			if item.AI != nil {
				if item.AI.Error != "" {
					line += fmt.Sprintf(" [ai error: %s]", item.AI.Error)
				} else {
					line += fmt.Sprintf(" [ai %.2f: %s]", item.AI.Score, item.AI.Reason)
				}
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "%d postings\n", p.Len())
	})
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
		zap.Float64("minimum_fit_score", minScore),
	)

	return gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger), nil
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, e *env, owned *posting.Postings) *filtering.Filtering {
	aiFilter, err := prepareAIFilter(ctx, cmd, e, owned)
	if err != nil {
		e.logger.Warn("skipping AI filter", zap.Error(err))
		aiFilter = filtering.NewAIFit(nil, nil)
	}

	steps := []filtering.Filter{
		prepareAppliedHistoryFilter(cmd, e),
		filtering.NewExcludedOwners(e.config.Exclude.Owners),
		filtering.NewExcludeFile(viper.GetString("exclude-file")),
	}

	// The ai step is the expensive one, so it sees the smallest list.
	steps = append(steps, aiFilter)

	return filtering.New(steps, e.logger)
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, e *env) filtering.Filter {
	ignore := false
	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}

	cfg := &filtering.AppliedHistoryConfig{Ignore: ignore, Role: e.session.Role}
	deps := &filtering.AppliedHistoryDeps{
		Store:  e.store,
		Logger: e.logger,
	}

	return filtering.NewAppliedHistory(cfg, deps)
}

func prepareAIFilter(ctx context.Context, cmd *cobra.Command, e *env, owned *posting.Postings) (filtering.Filter, error) {
	config := e.config.AI
	if config == nil || !config.Enabled {
		return filtering.NewAIFit(&filtering.AIFitFilterConfig{
			Enabled: false,
		}, nil), nil
	}

	if config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai filter is enabled")
	}

	own, err := aiOwnPosting(cmd, owned)
	if err != nil {
		return nil, err
	}

	matcher, err := newAIMatcher(ctx, config, e.logger)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	model := config.Gemini.Model
	if model == "" {
		model = gemini.DefaultModel
	}

	return filtering.NewAIFit(&filtering.AIFitFilterConfig{
		Enabled:      true,
		Model:        model,
		KeepRejected: config.KeepRejected,
	}, &filtering.AIFitFilterDeps{
		Logger:  e.logger,
		Matcher: matcher,
		Own:     own,
	}), nil
}

// aiOwnPosting picks the --ai-own posting, or the only one the user has.
func aiOwnPosting(cmd *cobra.Command, owned *posting.Postings) (*posting.Posting, error) {
	id, _ := cmd.Flags().GetString("ai-own")
	if id = strings.TrimSpace(id); id != "" {
		own := owned.FindByID(id)
		if own == nil {
			return nil, fmt.Errorf("%w: %s", ranking.ErrUnknownSelection, id)
		}
		return own, nil
	}

	if owned.Len() == 1 {
		return owned.Items[0], nil
	}

	return nil, fmt.Errorf("%d own postings found: choose one with --ai-own", owned.Len())
}

var _ ranking.Ranker = (*backend.Client)(nil)
