// internal/modes/routes.go
package modes

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/modes/likemode"
	"github.com/xkilldash9x/socialbot/internal/store"
)

// LikeFriendsFeedRealistic is the key of the friends-feed like strategy.
const LikeFriendsFeedRealistic = likemode.ModeKey

// Deps holds what the built-in strategies are assembled from.
type Deps struct {
	Home       likemode.HomeNavigator
	Feed       likemode.Feed
	Journal    store.Journal
	Translator likemode.Translator
	Logger     *zap.Logger
	Config     config.Interface
	Recorder   likemode.Recorder
	RunID      string
}

// Routes returns the table of built-in modes.
func Routes(deps Deps) []Entry {
	likeOpts := []likemode.Option{likemode.WithRunID(deps.RunID)}
	if deps.Recorder != nil {
		likeOpts = append(likeOpts, likemode.WithRecorder(deps.Recorder))
	}

	return []Entry{
		{
			Key: LikeFriendsFeedRealistic,
			Strategy: likemode.New(deps.Home, deps.Feed, deps.Journal, deps.Translator, deps.Logger,
				deps.Config.Modes().LikeFriendsFeed, likeOpts...),
		},
	}
}

// NewDefaultRegistry builds the registry of built-in modes.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	return NewRegistry(Routes(deps)...)
}
