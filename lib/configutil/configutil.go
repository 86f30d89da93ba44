package configutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override file that sits next to name,
// scraper.json5 -> scraper.local.json5
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

func mergeFile[T any](out *T, path string) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}

	var override T
	err = json5.Unmarshal(contents, &override)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	err = mergo.Merge(out, override, mergo.WithOverride)
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a JSON5 configuration file on top of defaults, `name` should come
// with a file extension. this function will merge the following, where higher number
// is more prioritized (zero values never override).
// 0. defaults
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// when neither file exists the defaults are returned along with os.ErrNotExist.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults

	foundDefault, err := mergeFile(&out, name)
	if err != nil {
		return defaults, err
	}
	foundLocal, err := mergeFile(&out, LocalPath(name))
	if err != nil {
		return defaults, err
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from the cwd until
// the root to find a configuration file matching the name.
func ReadRecursively[T any](name string, defaults T) (T, string, error) {
	current, err := os.Getwd()
	if err != nil {
		return defaults, "", err
	}

	for {
		path := filepath.Join(current, name)
		config, err := ReadConfig(path, defaults)
		if err == nil {
			return config, path, nil
		}
		if !os.IsNotExist(err) {
			return defaults, "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaults, "", os.ErrNotExist
		}
		current = parent
	}
}
