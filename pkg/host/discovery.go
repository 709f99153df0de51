package host

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// readDirectory walks root on fsys and returns the files matching the
// extension suffixes, exclude and include globs, and depth limit, sorted.
// Glob patterns are matched against the path relative to root.
func readDirectory(
	fsys afero.Fs,
	root string,
	extensions, excludes, includes []string,
	depth int,
) ([]string, error) {
	root = filepath.Clean(root)

	info, err := fsys.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []string

	err = afero.Walk(fsys, root, func(path string, entry os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if depth > 0 && dirDepth(relPath) >= depth {
				return filepath.SkipDir
			}
			if matchesAny(relPath, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if matchesFile(path, relPath, extensions, excludes, includes) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	sort.Strings(files)

	return files, nil
}

// dirDepth returns the nesting level of a directory relative to the walk root.
func dirDepth(relPath string) int {
	return strings.Count(filepath.ToSlash(relPath), "/") + 1
}

func matchesFile(path, relPath string, extensions, excludes, includes []string) bool {
	if !hasExtension(path, extensions) {
		return false
	}
	if matchesAny(relPath, excludes) {
		return false
	}
	if len(includes) > 0 && !matchesAny(relPath, includes) {
		return false
	}
	return true
}

// hasExtension matches by suffix so multi-dot extensions like ".d.ts" work.
func hasExtension(path string, extensions []string) bool {
	lower := strings.ToLower(path)
	return lo.ContainsBy(extensions, func(ext string) bool {
		return strings.HasSuffix(lower, strings.ToLower(ext))
	})
}

func matchesAny(relPath string, patterns []string) bool {
	return lo.ContainsBy(patterns, func(pattern string) bool {
		return matchGlob(relPath, pattern)
	})
}

// matchGlob matches a path against a glob pattern. It supports "*.vue",
// "src/**", "**/node_modules" and "src/**/*.ts" style patterns.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		return matchDoubleStar(path, pattern)
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	matched, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && matched
}

func matchDoubleStar(path, pattern string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" && path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return false
	}
	if suffix == "" {
		return true
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
	segments := strings.Split(rest, "/")
	for i := range segments {
		candidate := strings.Join(segments[i:], "/")
		if matched, err := filepath.Match(suffix, candidate); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(suffix, segments[i]); err == nil && matched {
			return true
		}
	}

	return false
}
