package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// mockNavigator mocks the Navigator interface.
type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// logLine is one captured call on the recording logger.
type logLine struct {
	Level string
	Tag   string
	Msg   string
	Err   error
}

// recordingLogger captures everything the dispatcher logs.
type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) add(line logLine) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *recordingLogger) Info(tag, msg string)  { l.add(logLine{Level: "info", Tag: tag, Msg: msg}) }
func (l *recordingLogger) Error(tag, msg string) { l.add(logLine{Level: "error", Tag: tag, Msg: msg}) }
func (l *recordingLogger) Docs(domain, tag string) {
	l.add(logLine{Level: "docs", Tag: tag, Msg: domain})
}
func (l *recordingLogger) KnowledgeBaseHint(tag, subsystem string, err error) {
	l.add(logLine{Level: "hint", Tag: tag, Msg: subsystem, Err: err})
}

func (l *recordingLogger) all() []logLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logLine(nil), l.lines...)
}

// mapTranslator translates from a fixed table and echoes unknown keys.
type mapTranslator map[string]string

func (m mapTranslator) Translate(key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

var testTranslations = mapTranslator{
	"try_goto_post_page":    "going to post",
	"try_goto_hashtag_page": "going to hashtag",
	"try_goto_gps_page":     "going to location",
	"try_goto_profile_page": "going to profile",
	"try_goto_login_page":   "going to login",
	"try_goto_home_page":    "going home",
	"post_id":               "Post ID",
	"done":                  "Done",
}

// funcNavigator adapts a function to Navigator.
type funcNavigator func(ctx context.Context, url string) error

func (f funcNavigator) Navigate(ctx context.Context, url string) error { return f(ctx, url) }

// urlRecorder is a Navigator that records URLs and fails with err when set.
type urlRecorder struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (r *urlRecorder) Navigate(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return r.err
}

func (r *urlRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.urls) == 0 {
		return ""
	}
	return r.urls[len(r.urls)-1]
}

// observation is one call on fakeRecorder.
type observation struct {
	Kind string
	OK   bool
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *fakeRecorder) ObserveNavigation(kind string, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{Kind: kind, OK: ok})
}

var errTimedOut = errors.New("net::ERR_TIMED_OUT")
