// Package fsops implements the filesystem operations behind the guardfs
// tools. Every operation validates its paths against the configured policy
// first and then acts through an open file handle, so the checks and the
// I/O cannot be split by a concurrent rename or symlink swap.
package fsops

// FileMetadata describes a single file or directory.
type FileMetadata struct {
	Size      int64  `json:"size"`
	IsFile    bool   `json:"is_file"`
	IsDir     bool   `json:"is_dir"`
	IsSymlink bool   `json:"is_symlink"`
	Modified  *int64 `json:"modified"`
	Created   *int64 `json:"created"`
	ReadOnly  bool   `json:"readonly"`
}

// DirectoryEntry describes one entry of a directory listing.
type DirectoryEntry struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	IsFile bool   `json:"is_file"`
	IsDir  bool   `json:"is_dir"`
	Size   *int64 `json:"size"`
}

// GrepMatch is one matching line of a grep operation with its surrounding
// context. Line numbers are 1-based.
type GrepMatch struct {
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}
