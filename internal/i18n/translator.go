// Package i18n translates operator-facing log messages. Locale files live in
// locales/<language>.yaml as flat key -> message maps and are compiled into the
// binary.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator looks up messages for one language, falling back to English and
// then to the key itself. It is immutable and safe for concurrent use.
type Translator struct {
	tag      language.Tag
	printer  *message.Printer
	fallback *message.Printer
	messages map[string]string
	english  map[string]string
}

// New builds a Translator for lang (a BCP 47 tag such as "it" or "it-IT").
// Unsupported languages resolve to the closest available one, English by default.
func New(lang string) (*Translator, error) {
	return newFromFS(localeFS, "locales", lang)
}

func newFromFS(fsys fs.FS, dir, lang string) (*Translator, error) {
	requested, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}

	locales, err := loadLocales(fsys, dir)
	if err != nil {
		return nil, err
	}
	english, ok := locales[language.English]
	if !ok {
		return nil, fmt.Errorf("locale directory %s has no en.yaml", dir)
	}

	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	// English goes first so that the matcher uses it as the default.
	tags := []language.Tag{language.English}
	for tag, msgs := range locales {
		if tag != language.English {
			tags = append(tags, tag)
		}
		for key, msg := range msgs {
			// Messages are printed through Sprintf, so a literal % must be doubled.
			if err := builder.SetString(tag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, fmt.Errorf("locale %s: key %q: %w", tag, key, err)
			}
		}
	}
	sort.Slice(tags[1:], func(i, j int) bool { return tags[1+i].String() < tags[1+j].String() })

	_, idx, _ := language.NewMatcher(tags).Match(requested)
	tag := tags[idx]

	return &Translator{
		tag:      tag,
		printer:  message.NewPrinter(tag, message.Catalog(builder)),
		fallback: message.NewPrinter(language.English, message.Catalog(builder)),
		messages: locales[tag],
		english:  english,
	}, nil
}

func loadLocales(fsys fs.FS, dir string) (map[language.Tag]map[string]string, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list locale files: %w", err)
	}

	locales := make(map[language.Tag]map[string]string, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".yaml")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", file, err)
		}

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", file, err)
		}
		locales[tag] = msgs
	}
	return locales, nil
}

// Language reports the language the translator resolved to.
func (t *Translator) Language() string { return t.tag.String() }

// Translate returns the message for key. It never fails: a key missing from
// every locale is returned as-is.
func (t *Translator) Translate(key string) string {
	if _, ok := t.messages[key]; ok {
		return t.printer.Sprintf(key)
	}
	if _, ok := t.english[key]; ok {
		return t.fallback.Sprintf(key)
	}
	return key
}
