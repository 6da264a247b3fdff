package commands

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// expandSources resolves each argument to absolute paths, expanding glob
// patterns (including **) against the filesystem. A pattern that matches
// nothing is an error; a plain path is passed through so the engine can
// report it as missing itself.
func expandSources(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", arg, err)
		}

		if !hasGlobMeta(arg) {
			paths = append(paths, abs)
			continue
		}

		matches, err := doublestar.FilepathGlob(abs)
		if err != nil {
			return nil, errors.Errorf("expanding %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("pattern %s matched nothing", arg)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasGlobMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
