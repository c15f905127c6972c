package i18n

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const catalogueFile = "notifications.yaml"

type Translations map[string]string

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

// LoadTranslations reads <localePath>/<locale>/notifications.yaml for every
// locale directory. Locale directories without the file are skipped.
func LoadTranslations(localePath string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := os.ReadDir(localePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(localePath, locale, catalogueFile)

		data, err := os.ReadFile(filePath)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		var catalogue struct {
			Notifications Translations `yaml:"NOTIFICATIONS"`
		}
		if err := yaml.Unmarshal(data, &catalogue); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		locales[locale] = catalogue.Notifications
	}

	return nil
}

// Translate looks key up in locale, then in "en", and finally returns the key.
func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != "en" {
		if trans, ok := locales["en"]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}
