// Package ranking keeps the list of postings shown to the user and replaces it
// with the compatibility order computed by the backend.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/filtering"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/session"
)

var (
	// ErrSelectionRequired is returned when Rank is called without a selected posting.
	ErrSelectionRequired = errors.New("select one of your postings first")
	// ErrUnknownSelection is returned when the selected id is not one of the owned postings.
	ErrUnknownSelection = errors.New("selected posting is not one of yours")
	// ErrSuperseded is returned to a Rank call whose result lost to a newer request.
	ErrSuperseded = errors.New("ranking superseded by a newer request")
)

// Ranker orders the postings the role browses by compatibility with selectedID.
type Ranker interface {
	Rank(ctx context.Context, role posting.Role, selectedID string) (*posting.Postings, error)
}

// Notifier tells the user about the outcome of a ranking.
type Notifier interface {
	Success(msg string)
	Failure(err error)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(error)  {}

// Board holds the displayed postings. Only the latest issued Rank may replace them.
type Board struct {
	ranker   Ranker
	notifier Notifier
	session  *session.Session
	logger   *zap.Logger

	mu         sync.Mutex
	displayed  *posting.Postings
	owned      *posting.Postings
	pipeline   *filtering.Filtering
	generation uint64
	cancel     context.CancelFunc
}

func New(ranker Ranker, sess *session.Session, notifier Notifier, logger *zap.Logger) (*Board, error) {
	if ranker == nil {
		return nil, fmt.Errorf("ranker is required")
	}
	if sess == nil || sess.Role == "" {
		return nil, fmt.Errorf("session with a role is required")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Board{
		ranker:    ranker,
		notifier:  notifier,
		session:   sess,
		logger:    logger,
		displayed: posting.NewPostings(),
	}, nil
}

// Replace shows a freshly fetched list. Any ranking still in flight is superseded.
func (b *Board) Replace(p *posting.Postings) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.supersede()
	b.displayed = p.Clone()
}

// SetOwned records the caller's own postings so Rank can reject foreign selections.
func (b *Board) SetOwned(p *posting.Postings) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.owned = p.Clone()
}

// SetPipeline makes Rank pass the ranked list through the same steps the
// fetched list went through. Steps only drop or annotate, so server order holds.
func (b *Board) SetPipeline(f *filtering.Filtering) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pipeline = f
}

// Displayed returns a copy of the list currently shown.
func (b *Board) Displayed() *posting.Postings {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.displayed.Clone()
}

// Filtered applies criteria to the displayed list without changing it.
func (b *Board) Filtered(criteria posting.Criteria) *posting.Postings {
	return filtering.ApplyFilters(b.Displayed(), criteria, b.session.Role)
}

// Rank asks the ranker for the compatibility order relative to selectedID and
// shows it. On failure the displayed list is left as it was and the notifier
// is told once.
func (b *Board) Rank(ctx context.Context, selectedID string) error {
	selectedID = strings.TrimSpace(selectedID)
	if selectedID == "" {
		b.notifier.Failure(ErrSelectionRequired)
		return ErrSelectionRequired
	}

	b.mu.Lock()
	if b.owned != nil && b.owned.FindByID(selectedID) == nil {
		b.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrUnknownSelection, selectedID)
		b.notifier.Failure(err)
		return err
	}

	b.supersede()
	gen := b.generation
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	pipeline := b.pipeline
	b.mu.Unlock()
	defer cancel()

	b.logger.Debug("requesting ranking",
		zap.String("selected_id", selectedID),
		zap.Uint64("generation", gen),
	)

	ranked, err := b.ranker.Rank(ctx, b.session.Role, selectedID)
	if err == nil && pipeline != nil {
		ranked, err = pipeline.RunFilters(ctx, ranked)
	}

	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		b.logger.Debug("discarding stale ranking",
			zap.String("selected_id", selectedID),
			zap.Uint64("generation", gen),
			zap.Bool("failed", err != nil),
		)
		return ErrSuperseded
	}
	if err != nil {
		b.mu.Unlock()
		b.logger.Error("ranking failed", zap.String("selected_id", selectedID), zap.Error(err))
		b.notifier.Failure(err)
		return fmt.Errorf("rank: %w", err)
	}
	b.displayed = ranked.Clone()
	b.cancel = nil
	b.mu.Unlock()

	b.notifier.Success(fmt.Sprintf("ranked %d postings by compatibility", ranked.Len()))
	return nil
}

// supersede invalidates the ranking in flight. Callers hold mu.
func (b *Board) supersede() {
	b.generation++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
