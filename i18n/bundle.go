package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*.json
var defaultLocales embed.FS

var (
	ErrInvalidLanguage         = errors.New("invalid language in filename")
	ErrDefaultLanguageMissing  = errors.New("default language translations missing")
	ErrFailedToSetString       = errors.New("failed to set string")
	ErrInvalidTranslationsFile = errors.New("invalid translations file")
)

// Bundle holds the translations user-facing messages are resolved
// through. The embedded English catalogue is always present; callers may
// add or override languages at runtime.
type Bundle struct {
	mu           sync.RWMutex
	defaultLang  language.Tag
	translations map[language.Tag]map[string]string
	catalog      *catalog.Builder
	printers     map[language.Tag]*message.Printer
}

var (
	defaultBundle *Bundle
	defaultOnce   sync.Once
)

// Default returns the process-wide bundle backed by the embedded locales.
func Default() *Bundle {
	defaultOnce.Do(func() {
		var err error
		defaultBundle, err = NewBundle()
		if err != nil {
			panic("failed to load embedded locales: " + err.Error())
		}
	})

	return defaultBundle
}

// NewBundle creates a bundle from the embedded locale files.
func NewBundle() (*Bundle, error) {
	b := &Bundle{
		defaultLang:  language.English,
		translations: make(map[language.Tag]map[string]string),
		catalog:      catalog.NewBuilder(),
		printers:     make(map[language.Tag]*message.Printer),
	}
	if err := b.loadEmbedded(); err != nil {
		return nil, err
	}
	if _, exists := b.translations[b.defaultLang]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrDefaultLanguageMissing, b.defaultLang)
	}

	return b, nil
}

func (b *Bundle) loadEmbedded() error {
	entries, err := defaultLocales.ReadDir("locales")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		langName := strings.TrimSuffix(name, filepath.Ext(name))
		lang, err := language.Parse(langName)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidLanguage, name)
		}
		content, err := defaultLocales.ReadFile("locales/" + name)
		if err != nil {
			return err
		}
		var translations map[string]string
		if err := json.Unmarshal(content, &translations); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidTranslationsFile, name, err)
		}
		if err := b.AddLanguage(lang, translations); err != nil {
			return err
		}
	}

	return nil
}

// AddLanguage adds or updates a language's translations.
func (b *Bundle) AddLanguage(lang language.Tag, translations map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make(map[string]string, len(translations))
	for k, v := range b.translations[lang] {
		merged[k] = v
	}
	for key, value := range translations {
		if err := b.catalog.SetString(lang, key, value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFailedToSetString, key, err)
		}
		merged[key] = value
	}
	b.translations[lang] = merged
	b.printers[lang] = message.NewPrinter(lang, message.Catalog(b.catalog))

	return nil
}

// T returns the translation for key in the default language.
func (b *Bundle) T(key string, args ...interface{}) string {
	b.mu.RLock()
	defaultLang := b.defaultLang
	b.mu.RUnlock()

	return b.TL(defaultLang, key, args...)
}

// TL returns the translation for key in the given language, falling back
// to the default language and finally to the key itself.
func (b *Bundle) TL(lang language.Tag, key string, args ...interface{}) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if p, exists := b.printers[lang]; exists {
		return p.Sprintf(key, args...)
	}
	if p := b.printers[b.defaultLang]; p != nil {
		return p.Sprintf(key, args...)
	}

	return key
}

// Errorf returns an error with a localized message.
func (b *Bundle) Errorf(key string, args ...interface{}) error {
	return errors.New(b.T(key, args...))
}

// HasKey reports whether a translation exists for key in lang.
func (b *Bundle) HasKey(lang language.Tag, key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.translations[lang][key]

	return ok
}
