package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/logger"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/secrets"
	"github.com/spigell/shiftmatch/internal/session"
)

// env is what every command needs once config and session are resolved.
type env struct {
	config  *Config
	logger  *zap.Logger
	store   session.Store
	session *session.Session
	client  *backend.Client
	out     *printer
	close   func()
}

// setup builds the logger, config and session store. With authenticated set it
// also loads the session and returns a client carrying its token.
func setup(ctx context.Context, authenticated bool) *env {
	base, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		base.Fatal("getting a config", zap.Error(err))
	}

	out, err := newPrinter(config.Output)
	if err != nil {
		base.Fatal("configuring output", zap.Error(err))
	}

	store, closeStore, err := openStore(ctx, config.Session)
	if err != nil {
		base.Fatal("opening session store", zap.Error(err), zap.String("store", config.Session.Store))
	}

	e := &env{
		config: config,
		logger: base,
		store:  store,
		out:    out,
		close: func() {
			closeStore()
			_ = base.Sync()
		},
	}

	e.client = backend.New(base, config.APIURL, "")
	if config.UserAgent != "" {
		e.client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		e.client.HTTPClient.Timeout = config.Timeout
	}

	if !authenticated {
		return e
	}

	sess, err := resolveSession(ctx, config, store)
	if err != nil {
		base.Fatal("loading session",
			zap.Error(err),
			zap.String("hint", "run the login command or set SHIFTMATCH_TOKEN_FILE"),
		)
	}

	e.session = sess
	e.logger = base.With(logger.SessionFields(string(sess.Role), sess.UserID, config.APIURL)...)
	e.client = e.client.WithToken(sess.Token)

	return e
}

// resolveSession prefers a configured token file over the stored login.
func resolveSession(ctx context.Context, config *Config, store session.Store) (*session.Session, error) {
	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		return session.Load(ctx, store)
	}

	token, err := secrets.Load(secrets.Source{
		Name: "api token",
		File: tokenFile,
	})
	if err != nil {
		return nil, err
	}

	return backend.SessionFromToken(token)
}

func openStore(ctx context.Context, cfg *SessionConfig) (session.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "file":
		path := strings.TrimSpace(cfg.File)
		if path == "" {
			var err error
			if path, err = session.DefaultFilePath(app); err != nil {
				return nil, nil, err
			}
		}
		return session.NewFileStore(path), func() {}, nil
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, nil, errors.New("session.redis-url is required for the redis store")
		}
		store, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

// requireRole stops commands that make sense for one role only.
func (e *env) requireRole(role posting.Role, action string) {
	if e.session.Role != role {
		e.logger.Fatal("action is not available for the role",
			zap.String("action", action),
			zap.String("required_role", string(role)),
		)
	}
}

// criteria merges the configured filters with the command flags.
func criteria(cfg *FiltersConfig, flags *FiltersConfig) (posting.Criteria, error) {
	merged := *cfg
	if flags != nil {
		if flags.Location != "" {
			merged.Location = flags.Location
		}
		if flags.Experience != "" {
			merged.Experience = flags.Experience
		}
		if flags.Gender != "" {
			merged.Gender = flags.Gender
		}
		if len(flags.Days) > 0 {
			merged.Days = flags.Days
		}
	}

	days, err := posting.NewDaySet(merged.Days...)
	if err != nil {
		return posting.Criteria{}, err
	}

	return posting.Criteria{
		Location:   merged.Location,
		Experience: merged.Experience,
		Gender:     merged.Gender,
		Days:       days,
	}, nil
}
