package fsops

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"

	"guardfs/internal/fserr"
	"guardfs/internal/policy"
)

// lineScanBuffer is the maximum line length accepted by line-oriented reads.
const lineScanBuffer = 4 * 1024 * 1024

// Reader performs policy-checked read operations.
type Reader struct {
	policy policy.Policy
}

// NewReader returns a Reader enforcing the given policy.
func NewReader(p policy.Policy) *Reader {
	return &Reader{policy: p}
}

// mapOpenError converts an os open failure into the matching typed error.
func mapOpenError(err error, path string) error {
	switch {
	case os.IsNotExist(err):
		return fserr.NotFound(path)
	case os.IsPermission(err):
		return fserr.PermissionDenied(path)
	default:
		return fserr.IO(err)
	}
}

// openValidated runs the full read protocol: validate the path, open the
// canonical result, then check size and file type through the handle so a
// swap between validation and open cannot change what is read.
func openValidated(p *policy.Policy, path string) (*os.File, os.FileInfo, error) {
	validated, err := p.ValidateRead(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(validated)
	if err != nil {
		return nil, nil, mapOpenError(err, validated)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fserr.IO(err)
	}
	if err := p.ValidateSize(info.Size()); err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fserr.InvalidPath("path is not a regular file")
	}

	return f, info, nil
}

// ReadString reads the entire file as a string.
func (r *Reader) ReadString(path string) (string, error) {
	data, err := r.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBytes reads the entire file.
func (r *Reader) ReadBytes(path string) ([]byte, error) {
	f, _, err := openValidated(&r.policy, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fserr.IO(err)
	}
	return data, nil
}

// ReadLines returns a slice of the file's lines. When tail is positive it
// wins over the range and returns the last tail lines. Otherwise startLine
// and endLine select a 1-based inclusive range; zero means "from the start"
// and "to the end" respectively. A start past the end of the file returns
// an empty slice.
func (r *Reader) ReadLines(path string, startLine, endLine, tail int) ([]string, error) {
	f, _, err := openValidated(&r.policy, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := scanLines(f)
	if err != nil {
		return nil, err
	}

	if tail > 0 {
		start := 0
		if len(lines) > tail {
			start = len(lines) - tail
		}
		return lines[start:], nil
	}

	startIdx := 0
	if startLine > 0 {
		startIdx = startLine - 1
	}
	endIdx := len(lines)
	if endLine > 0 && endLine < endIdx {
		endIdx = endLine
	}
	if startIdx >= len(lines) || startIdx >= endIdx {
		return []string{}, nil
	}
	return lines[startIdx:endIdx], nil
}

func scanLines(f *os.File) ([]string, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), lineScanBuffer)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fserr.IO(err)
	}
	return lines, nil
}

// Metadata returns the metadata of a file or directory. The stat runs
// through an open handle so the reported fields belong to the object that
// passed validation, not to whatever the path resolves to afterwards. The
// symlink flag reports on the requested path itself, since validation
// hands back the resolved target.
func (r *Reader) Metadata(path string) (*FileMetadata, error) {
	validated, err := r.policy.ValidateRead(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(validated)
	if err != nil {
		return nil, mapOpenError(err, validated)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fserr.IO(err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fserr.IO(err)
	}
	li, err := os.Lstat(abs)
	if err != nil {
		return nil, mapOpenError(err, abs)
	}
	isSymlink := li.Mode()&os.ModeSymlink != 0

	modified := info.ModTime().Unix()
	return &FileMetadata{
		Size:      info.Size(),
		IsFile:    info.Mode().IsRegular(),
		IsDir:     info.IsDir(),
		IsSymlink: isSymlink,
		Modified:  &modified,
		Created:   createdEpoch(info),
		ReadOnly:  info.Mode().Perm()&0o200 == 0,
	}, nil
}

// Exists reports whether path names an accessible file or directory. A path
// the policy denies reports false rather than an error, so callers cannot
// probe for the existence of files they may not read.
func (r *Reader) Exists(path string) (bool, error) {
	_, err := r.policy.ValidateRead(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fserr.ErrNotFound) || errors.Is(err, fserr.ErrPermissionDenied) {
		return false, nil
	}
	return false, err
}

// ListDirectory lists the entries of a directory, recursively when asked.
// Entries the policy rejects are silently omitted. Symlinked directories
// are descended into only when the policy allows symlinks; a visited set
// keeps link cycles from looping forever.
func (r *Reader) ListDirectory(path string, recursive bool) ([]DirectoryEntry, error) {
	validated, err := r.policy.ValidateRead(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(validated)
	if err != nil {
		return nil, mapOpenError(err, validated)
	}
	if !info.IsDir() {
		return nil, fserr.InvalidPath("path is not a directory")
	}

	entries := []DirectoryEntry{}
	err = r.walk(validated, recursive, func(entryPath string, entry os.DirEntry) bool {
		if _, err := r.policy.ValidateRead(entryPath); err != nil {
			return true
		}
		var size *int64
		if ei, err := entry.Info(); err == nil {
			n := ei.Size()
			size = &n
		}
		entries = append(entries, DirectoryEntry{
			Path:   entryPath,
			Name:   entry.Name(),
			IsFile: entry.Type().IsRegular(),
			IsDir:  entry.IsDir(),
			Size:   size,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SearchFiles walks basePath and returns the paths whose base name matches
// the glob pattern. Recursion and the result cap follow the arguments;
// maxResults zero means unlimited. Entries the policy rejects are omitted.
func (r *Reader) SearchFiles(basePath, pattern string, recursive bool, maxResults int) ([]string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fserr.InvalidParameters("invalid glob pattern: " + err.Error())
	}

	validated, err := r.policy.ValidateRead(basePath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(validated)
	if err != nil {
		return nil, mapOpenError(err, validated)
	}
	if !info.IsDir() {
		return nil, fserr.InvalidPath("base path must be a directory")
	}

	results := []string{}
	err = r.walk(validated, recursive, func(entryPath string, entry os.DirEntry) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		if !matcher.Match(entry.Name()) {
			return true
		}
		if _, err := r.policy.ValidateRead(entryPath); err != nil {
			return true
		}
		results = append(results, entryPath)
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GrepFile scans a file line by line with a regular expression and returns
// the matching lines with their surrounding context. maxMatches zero means
// unlimited, contextLines zero means no context.
func (r *Reader) GrepFile(path, pattern string, maxMatches, contextLines int) ([]GrepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fserr.InvalidParameters("invalid regex pattern: " + err.Error())
	}

	f, _, err := openValidated(&r.policy, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := scanLines(f)
	if err != nil {
		return nil, err
	}

	matches := []GrepMatch{}
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		if maxMatches > 0 && len(matches) >= maxMatches {
			break
		}

		before := i - contextLines
		if before < 0 {
			before = 0
		}
		after := i + contextLines + 1
		if after > len(lines) {
			after = len(lines)
		}

		matches = append(matches, GrepMatch{
			LineNumber:    i + 1,
			LineContent:   line,
			ContextBefore: append([]string{}, lines[before:i]...),
			ContextAfter:  append([]string{}, lines[i+1:after]...),
		})
	}
	return matches, nil
}
