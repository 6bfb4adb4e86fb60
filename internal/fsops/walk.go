package fsops

import (
	"os"
	"path/filepath"
)

// walk visits every entry under root in directory order, calling visit for
// each one. The root itself is not visited. A false return from visit stops
// the walk early. Unreadable subdirectories are skipped.
//
// Symlinked directories are followed only when the policy allows symlinks,
// and a visited set of resolved directory paths guards against link cycles.
func (r *Reader) walk(root string, recursive bool, visit func(path string, entry os.DirEntry) bool) error {
	visited := make(map[string]bool)

	var walkDir func(dir string) (bool, error)
	walkDir = func(dir string) (bool, error) {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return true, nil
		}
		if visited[resolved] {
			return true, nil
		}
		visited[resolved] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return false, mapOpenError(err, dir)
			}
			return true, nil
		}

		for _, entry := range entries {
			entryPath := filepath.Join(dir, entry.Name())
			if !visit(entryPath, entry) {
				return false, nil
			}
			if !recursive {
				continue
			}
			if r.shouldDescend(entryPath, entry) {
				keepGoing, err := walkDir(entryPath)
				if err != nil {
					return false, err
				}
				if !keepGoing {
					return false, nil
				}
			}
		}
		return true, nil
	}

	_, err := walkDir(root)
	return err
}

// shouldDescend reports whether a walk may recurse into entry.
func (r *Reader) shouldDescend(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 || !r.policy.AllowSymlinks {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
