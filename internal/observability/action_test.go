package observability

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/socialbot/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedActionLogger(diagnostics bool) (*ActionLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.LoggerConfig{Diagnostics: diagnostics, DocsURL: "https://docs.example.test/"}
	return NewActionLogger(zap.New(core), cfg), logs
}

func fieldString(t *testing.T, entry observer.LoggedEntry, key string) string {
	t.Helper()
	v, ok := entry.ContextMap()[key]
	require.True(t, ok, "field %q missing", key)
	return v.(string)
}

func TestActionLogger_Levels(t *testing.T) {
	l, logs := newObservedActionLogger(true)

	l.Info("goto::post()", "going")
	l.Error("goto::post()", "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "going", entries[0].Message)
	assert.Equal(t, "goto::post()", fieldString(t, entries[0], "tag"))
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Message)
}

func TestActionLogger_Diagnostics(t *testing.T) {
	l, logs := newObservedActionLogger(true)

	l.Docs("api", "goto::login()")
	l.KnowledgeBaseHint("goto::login()", "chromedp", errors.New("net::ERR_TIMED_OUT"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://docs.example.test/api.html", fieldString(t, entries[0], "url"))

	hint := fieldString(t, entries[1], "url")
	assert.True(t, strings.HasPrefix(hint, knowledgeBaseSearchURL))
	parsed, err := url.Parse(hint)
	require.NoError(t, err)
	assert.Equal(t, "[chromedp] net::ERR_TIMED_OUT", parsed.Query().Get("q"))
}

func TestActionLogger_DiagnosticsDisabled(t *testing.T) {
	l, logs := newObservedActionLogger(false)

	l.Docs("api", "goto::login()")
	l.KnowledgeBaseHint("goto::login()", "chromedp", errors.New("x"))

	assert.Zero(t, logs.Len())
}

func TestKnowledgeBaseURL_TrimsMultilineAndLongErrors(t *testing.T) {
	err := errors.New("first line\nstack frame 1\nstack frame 2")
	parsed, perr := url.Parse(KnowledgeBaseURL("chromedp", err))
	require.NoError(t, perr)
	assert.Equal(t, "[chromedp] first line", parsed.Query().Get("q"))

	long := errors.New(strings.Repeat("a", 500))
	parsed, perr = url.Parse(KnowledgeBaseURL("chromedp", long))
	require.NoError(t, perr)
	assert.Len(t, parsed.Query().Get("q"), len("[chromedp] ")+maxHintErrorLen)
}
