package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Navigator moves the browser to url and returns once the page has settled.
// Implementations should honor ctx and report its expiry as an error.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Logger receives the tagged log lines of each action. Docs and
// KnowledgeBaseHint are the operator help lines emitted after a failure.
type Logger interface {
	Info(tag, msg string)
	Error(tag, msg string)
	Docs(domain, tag string)
	KnowledgeBaseHint(tag, subsystem string, err error)
}

// Translator resolves a message key to the operator's language.
type Translator interface {
	Translate(key string) string
}

// Recorder observes every settled navigation.
type Recorder interface {
	ObserveNavigation(kind string, ok bool, elapsed time.Duration)
}

// Kind names a destination kind.
type Kind string

const (
	KindPost     Kind = "post"
	KindHashtag  Kind = "hashtag"
	KindLocation Kind = "location"
	KindProfile  Kind = "profile"
	KindLogin    Kind = "login"
	KindHome     Kind = "home"
)

const (
	docsDomain = "api"
	// driverSubsystem scopes knowledge-base searches for navigation failures.
	driverSubsystem = "chromedp"
)

// destination is everything that differs between two goto actions.
type destination struct {
	kind      Kind
	tag       string
	intentKey string
	url       string
	// echo renders the success line identifying the destination; nil for none.
	echo func() string
}

// Dispatcher performs goto actions against a single browser session.
// It is safe for concurrent use, but navigations are serialized: the
// session is a single-writer resource.
type Dispatcher struct {
	nav      Navigator
	log      Logger
	tr       Translator
	recorder Recorder
	timeout  time.Duration

	navMu sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder reports every settled navigation to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithTimeout bounds every navigation by d, on top of the caller's context.
// Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// New creates a Dispatcher driving nav.
func New(nav Navigator, log Logger, tr Translator, opts ...Option) *Dispatcher {
	d := &Dispatcher{nav: nav, log: log, tr: tr}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Post goes to the page of the post identified by idHash.
func (d *Dispatcher) Post(ctx context.Context, idHash string) Outcome {
	return d.dispatch(ctx, destination{
		kind:      KindPost,
		tag:       "goto::post()",
		intentKey: "try_goto_post_page",
		url:       PostURL(idHash),
		echo:      func() string { return fmt.Sprintf("%s: %s", d.tr.Translate("post_id"), idHash) },
	})
}

// Hashtag goes to the explore page of tag. A leading '#' is optional.
func (d *Dispatcher) Hashtag(ctx context.Context, tag string) Outcome {
	tag = NormalizeHashtag(tag)
	return d.dispatch(ctx, destination{
		kind:      KindHashtag,
		tag:       "goto::hashtag()",
		intentKey: "try_goto_hashtag_page",
		url:       HashtagURL(tag),
		echo:      func() string { return "#" + tag },
	})
}

// Location goes to the explore page of the location gpsID.
func (d *Dispatcher) Location(ctx context.Context, gpsID string) Outcome {
	return d.dispatch(ctx, destination{
		kind:      KindLocation,
		tag:       "goto::location()",
		intentKey: "try_goto_gps_page",
		url:       LocationURL(gpsID),
		echo:      func() string { return "GPS ID: " + gpsID },
	})
}

// LocationID is Location for numeric ids.
func (d *Dispatcher) LocationID(ctx context.Context, gpsID int64) Outcome {
	return d.Location(ctx, strconv.FormatInt(gpsID, 10))
}

// Profile goes to the profile of handle. A leading '@' is optional.
func (d *Dispatcher) Profile(ctx context.Context, handle string) Outcome {
	handle = NormalizeProfile(handle)
	return d.dispatch(ctx, destination{
		kind:      KindProfile,
		tag:       "goto::profile()",
		intentKey: "try_goto_profile_page",
		url:       ProfileURL(handle),
		echo:      func() string { return "@" + handle },
	})
}

// Login goes to the login page.
func (d *Dispatcher) Login(ctx context.Context) Outcome {
	return d.dispatch(ctx, destination{
		kind:      KindLogin,
		tag:       "goto::login()",
		intentKey: "try_goto_login_page",
		url:       LoginURL,
	})
}

// Home goes to the home feed.
func (d *Dispatcher) Home(ctx context.Context) Outcome {
	return d.dispatch(ctx, destination{
		kind:      KindHome,
		tag:       "goto::home()",
		intentKey: "try_goto_home_page",
		url:       HomeURL,
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, dest destination) Outcome {
	d.log.Info(dest.tag, d.tr.Translate(dest.intentKey))

	outcome := Outcome{Status: false}

	start := time.Now()
	if err := d.navigate(ctx, dest.url); err != nil {
		outcome.Status = false
		outcome.Err = err
	} else {
		outcome.Status = true
	}
	if d.recorder != nil {
		d.recorder.ObserveNavigation(string(dest.kind), outcome.Status, time.Since(start))
	}

	if outcome.Status {
		if dest.echo != nil {
			d.log.Info(dest.tag, dest.echo())
		}
		d.log.Info(dest.tag, d.tr.Translate("done"))
	} else {
		d.log.Error(dest.tag, outcome.Err.Error())
		d.log.Docs(docsDomain, dest.tag)
		d.log.KnowledgeBaseHint(dest.tag, driverSubsystem, outcome.Err)
	}

	return outcome
}

// navigate performs the single navigation of an action while holding the
// session. A panicking navigator is reported as a failure.
func (d *Dispatcher) navigate(ctx context.Context, url string) (err error) {
	d.navMu.Lock()
	defer d.navMu.Unlock()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("navigator panicked while loading %s: %v", url, r)
		}
	}()
	return d.nav.Navigate(ctx, url)
}
