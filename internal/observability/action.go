// File: internal/observability/action.go
package observability

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xkilldash9x/socialbot/internal/config"
	"go.uber.org/zap"
)

const (
	knowledgeBaseSearchURL = "https://stackoverflow.com/search?q="
	// maxHintErrorLen bounds how much of a failure ends up in a search URL.
	maxHintErrorLen = 200
)

// ActionLogger adapts a zap logger to the tagged logging contract used by the
// action dispatcher. The tag travels as a structured field.
type ActionLogger struct {
	logger      *zap.Logger
	docsURL     string
	diagnostics bool
}

// NewActionLogger wraps logger. Error lines do not carry stack traces; a failed
// navigation is an expected outcome, not a programming error.
func NewActionLogger(logger *zap.Logger, cfg config.LoggerConfig) *ActionLogger {
	return &ActionLogger{
		logger:      logger.WithOptions(zap.AddStacktrace(zap.DPanicLevel)),
		docsURL:     strings.TrimSuffix(cfg.DocsURL, "/"),
		diagnostics: cfg.Diagnostics,
	}
}

func (l *ActionLogger) Info(tag, msg string) {
	l.logger.Info(msg, zap.String("tag", tag))
}

func (l *ActionLogger) Error(tag, msg string) {
	l.logger.Error(msg, zap.String("tag", tag))
}

// Docs points the operator at the documentation page for domain.
func (l *ActionLogger) Docs(domain, tag string) {
	if !l.diagnostics || l.docsURL == "" {
		return
	}
	l.logger.Info("Read the documentation for help.",
		zap.String("tag", tag),
		zap.String("url", fmt.Sprintf("%s/%s.html", l.docsURL, url.PathEscape(domain))),
	)
}

// KnowledgeBaseHint logs a ready-made search link for err scoped to subsystem.
func (l *ActionLogger) KnowledgeBaseHint(tag, subsystem string, err error) {
	if !l.diagnostics || err == nil {
		return
	}
	l.logger.Info("Search this error on Stack Overflow.",
		zap.String("tag", tag),
		zap.String("url", KnowledgeBaseURL(subsystem, err)),
	)
}

// KnowledgeBaseURL builds the search link. Only the first line of the error is
// used, truncated, so multi-line driver dumps stay out of the query string.
func KnowledgeBaseURL(subsystem string, err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > maxHintErrorLen {
		msg = msg[:maxHintErrorLen]
	}
	return knowledgeBaseSearchURL + url.QueryEscape(fmt.Sprintf("[%s] %s", subsystem, strings.TrimSpace(msg)))
}
