// internal/modes/likemode/friendsfeed.go
package likemode

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/socialbot/internal/browser"
	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/dispatch"
	"github.com/xkilldash9x/socialbot/internal/store"
)

// ModeKey is the registry key of the friends-feed strategy.
const ModeKey = "Likemode_friendsfeed_realistic"

// ErrNavigationAborted is returned when the home feed could not be reached
// max_navigation_failures times in a row.
var ErrNavigationAborted = errors.New("friends feed unreachable")

// errPacingStopped ends the run when the limiter can no longer grant a like
// before ctx expires.
var errPacingStopped = errors.New("like pacing stopped")

// errHourlyCapReached ends a cycle when the journal already holds
// likes_per_hour likes from the last hour, across runs.
var errHourlyCapReached = errors.New("hourly like cap reached")

// likeCounter is implemented by journals that can count recent likes.
type likeCounter interface {
	LikesSince(ctx context.Context, since time.Time) (int, error)
}

// HomeNavigator brings the browser back to the home feed.
type HomeNavigator interface {
	Home(ctx context.Context) dispatch.Outcome
}

// Feed reads and acts on the posts of the loaded home feed.
type Feed interface {
	FeedPosts(ctx context.Context) ([]browser.FeedPost, error)
	LikePost(ctx context.Context, post browser.FeedPost) error
	ScrollFeed(ctx context.Context) error
}

// Translator resolves operator-facing messages.
type Translator interface {
	Translate(key string) string
}

// Recorder counts likes.
type Recorder interface {
	ObserveLike(mode string)
}

// FriendsFeed likes a realistic share of the posts in the home feed, paced by
// a token bucket and never liking a journaled post twice.
type FriendsFeed struct {
	home     HomeNavigator
	feed     Feed
	journal  store.Journal
	tr       Translator
	logger   *zap.Logger
	cfg      config.LikeFriendsFeedConfig
	limiter  *rate.Limiter
	rng      *rand.Rand
	recorder Recorder
	runID    string
}

// Option configures a FriendsFeed.
type Option func(*FriendsFeed)

// WithLimiter replaces the limiter derived from likes_per_hour and burst.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *FriendsFeed) { f.limiter = l }
}

// WithRand sets the source used to pick which posts to like.
func WithRand(rng *rand.Rand) Option {
	return func(f *FriendsFeed) { f.rng = rng }
}

// WithRecorder counts every like on r.
func WithRecorder(r Recorder) Option {
	return func(f *FriendsFeed) { f.recorder = r }
}

// WithRunID tags journaled likes with id.
func WithRunID(id string) Option {
	return func(f *FriendsFeed) { f.runID = id }
}

// New creates the strategy.
func New(home HomeNavigator, feed Feed, journal store.Journal, tr Translator, logger *zap.Logger, cfg config.LikeFriendsFeedConfig, opts ...Option) *FriendsFeed {
	f := &FriendsFeed{
		home:    home,
		feed:    feed,
		journal: journal,
		tr:      tr,
		logger:  logger.Named("likemode").With(zap.String("mode", ModeKey)),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.limiter == nil {
		f.limiter = rate.NewLimiter(perHour(cfg.LikesPerHour), max(cfg.Burst, 1))
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return f
}

func perHour(n float64) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(n / time.Hour.Seconds())
}

// Run likes posts until max_likes is reached or ctx is done. Cancellation is
// a normal stop and returns nil.
func (f *FriendsFeed) Run(ctx context.Context) error {
	f.logger.Info(f.tr.Translate("likemode_start"), zap.Int("max_likes", f.cfg.MaxLikes))

	liked, err := f.run(ctx)
	if err != nil {
		return err
	}
	if liked < f.cfg.MaxLikes {
		f.logger.Info(f.tr.Translate("likemode_stopped"), zap.Int("liked", liked))
		return nil
	}
	f.logger.Info(f.tr.Translate("likemode_limit_reached"), zap.Int("liked", liked))
	return nil
}

func (f *FriendsFeed) run(ctx context.Context) (int, error) {
	liked := 0
	navFailures := 0

	for liked < f.cfg.MaxLikes {
		if ctx.Err() != nil {
			return liked, nil
		}

		if outcome := f.home.Home(ctx); !outcome.OK() {
			if ctx.Err() != nil {
				return liked, nil
			}
			navFailures++
			if f.cfg.MaxNavigationFailures > 0 && navFailures >= f.cfg.MaxNavigationFailures {
				return liked, fmt.Errorf("%w after %d attempts: %w", ErrNavigationAborted, navFailures, outcome.Err)
			}
			if !f.pause(ctx) {
				return liked, nil
			}
			continue
		}
		navFailures = 0

		f.logger.Debug(f.tr.Translate("likemode_cycle"))
		n, err := f.likeVisible(ctx, f.cfg.MaxLikes-liked)
		liked += n
		if errors.Is(err, errPacingStopped) {
			return liked, nil
		}
		if errors.Is(err, errHourlyCapReached) {
			f.logger.Info(f.tr.Translate("likemode_hourly_cap"), zap.Float64("likes_per_hour", f.cfg.LikesPerHour))
			if !f.pause(ctx) {
				return liked, nil
			}
			continue
		}
		if err != nil {
			return liked, err
		}
		if liked >= f.cfg.MaxLikes || ctx.Err() != nil {
			return liked, nil
		}

		if err := f.feed.ScrollFeed(ctx); err != nil {
			f.logger.Warn("Failed to scroll the feed.", zap.Error(err))
		}
		if !f.pause(ctx) {
			return liked, nil
		}
	}
	return liked, nil
}

// likeVisible likes up to budget of the posts currently in the feed.
func (f *FriendsFeed) likeVisible(ctx context.Context, budget int) (int, error) {
	posts, err := f.feed.FeedPosts(ctx)
	if err != nil {
		f.logger.Warn("Failed to read the feed.", zap.Error(err))
		return 0, nil
	}
	if len(posts) == 0 {
		f.logger.Info(f.tr.Translate("likemode_no_posts"))
		return 0, nil
	}

	liked := 0
	for _, post := range posts {
		if liked >= budget || ctx.Err() != nil {
			break
		}
		postLogger := f.logger.With(zap.String("post_id", post.ID), zap.String("author", post.Author))

		already, err := f.journal.HasLiked(ctx, post.ID)
		if err != nil {
			return liked, fmt.Errorf("failed to check like journal: %w", err)
		}
		if already {
			postLogger.Debug(f.tr.Translate("likemode_already_liked"))
			continue
		}
		if f.rng.Float64() >= f.cfg.LikeRatio {
			continue
		}

		if err := f.checkHourlyCap(ctx); err != nil {
			return liked, err
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return liked, fmt.Errorf("%w: %w", errPacingStopped, err)
		}
		if err := f.feed.LikePost(ctx, post); err != nil {
			postLogger.Warn(f.tr.Translate("likemode_like_failed"), zap.Error(err))
			continue
		}

		like := store.Like{PostID: post.ID, Author: post.Author, Mode: ModeKey, RunID: f.runID, LikedAt: time.Now()}
		if err := f.journal.RecordLike(ctx, like); err != nil {
			return liked, fmt.Errorf("failed to journal like: %w", err)
		}
		liked++
		if f.recorder != nil {
			f.recorder.ObserveLike(ModeKey)
		}
		postLogger.Info(f.tr.Translate("likemode_liked"))
	}
	return liked, nil
}

// checkHourlyCap consults the journal so that restarts do not reset the
// likes_per_hour budget the in-process limiter enforces.
func (f *FriendsFeed) checkHourlyCap(ctx context.Context) error {
	counter, ok := f.journal.(likeCounter)
	if !ok || f.cfg.LikesPerHour <= 0 {
		return nil
	}
	n, err := counter.LikesSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("failed to count recent likes: %w", err)
	}
	if float64(n) >= f.cfg.LikesPerHour {
		return errHourlyCapReached
	}
	return nil
}

// pause waits cycle_pause and reports whether the strategy should go on.
func (f *FriendsFeed) pause(ctx context.Context) bool {
	timer := time.NewTimer(f.cfg.CyclePause)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
