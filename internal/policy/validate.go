package policy

import (
	"os"
	"path/filepath"
	"strings"

	"guardfs/internal/fserr"
)

// ValidateRead checks path against the policy for a read-type operation and
// returns the canonical form to open. The canonical path is valid for
// exactly one operation; callers must re-validate on every request.
//
// Check order is load-bearing: denied roots are tested before allowed
// roots, so allow-list membership can never override an explicit deny, and
// both containment tests run on canonical forms only.
func (p *Policy) ValidateRead(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fserr.InvalidPath("path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fserr.IO(err)
	}
	canonical, err := canonicalize(abs)
	if err != nil {
		return "", err
	}

	if err := p.checkDeniedPaths(canonical); err != nil {
		return "", err
	}
	if err := p.checkAllowedPaths(canonical); err != nil {
		return "", err
	}
	if err := p.checkExtension(canonical); err != nil {
		return "", err
	}
	if err := p.checkHidden(canonical); err != nil {
		return "", err
	}
	if err := p.checkSymlink(abs, canonical); err != nil {
		return "", err
	}

	return canonical, nil
}

// ValidateWrite checks path for a write-type operation. The target usually
// does not exist yet, so containment is proven against the nearest existing
// ancestor, while the extension and hidden-file rules run against the
// literal target name. The returned path is intentionally not canonicalized
// (canonicalizing a non-existent path is undefined); containment was
// already established via the ancestor. Known sharp edge: the boundary
// check is only as strong as that nearest existing ancestor.
func (p *Policy) ValidateWrite(path string) (string, error) {
	if p.ReadOnly {
		return "", fserr.PermissionDenied("write operations are disabled in read-only mode")
	}
	if strings.TrimSpace(path) == "" {
		return "", fserr.InvalidPath("path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fserr.IO(err)
	}

	ancestor := abs
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return "", fserr.InvalidPath("cannot find existing ancestor directory")
		}
		ancestor = parent
	}

	canonical, err := canonicalize(ancestor)
	if err != nil {
		return "", err
	}
	if err := p.checkDeniedPaths(canonical); err != nil {
		return "", err
	}
	if err := p.checkAllowedPaths(canonical); err != nil {
		return "", err
	}

	// Extension and hidden rules apply to the name being created, not the
	// ancestor that happens to exist.
	if err := p.checkExtension(abs); err != nil {
		return "", err
	}
	if err := p.checkHidden(abs); err != nil {
		return "", err
	}

	return path, nil
}

// ValidateSize rejects sizes above the configured cap. A zero cap means
// unlimited.
func (p *Policy) ValidateSize(size int64) error {
	if p.MaxFileSize > 0 && size > p.MaxFileSize {
		return fserr.PermissionDenied("size exceeds maximum allowed file size")
	}
	return nil
}

// canonicalize resolves path to its absolute, symlink-free form.
func canonicalize(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fserr.NotFound(abs)
		}
		return "", fserr.IO(err)
	}
	return resolved, nil
}

// containsPath reports whether target equals root or is nested under it.
// Both arguments must already be canonical.
func containsPath(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}

func (p *Policy) checkDeniedPaths(canonical string) error {
	for _, denied := range p.DeniedPaths {
		deniedCanonical, err := canonicalizeRoot(denied)
		if err != nil {
			// A denied root that no longer resolves cannot match anything.
			continue
		}
		if containsPath(deniedCanonical, canonical) {
			return fserr.PermissionDenied("path is explicitly denied")
		}
	}
	return nil
}

func (p *Policy) checkAllowedPaths(canonical string) error {
	if len(p.AllowedPaths) == 0 {
		return nil
	}
	for _, allowed := range p.AllowedPaths {
		allowedCanonical, err := canonicalizeRoot(allowed)
		if err != nil {
			continue
		}
		if containsPath(allowedCanonical, canonical) {
			return nil
		}
	}
	return fserr.PermissionDenied("path is not in any allowed directory")
}

func canonicalizeRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (p *Policy) checkExtension(path string) error {
	ext := fileExtension(path)
	if ext == "" {
		if len(p.AllowedExtensions) > 0 {
			return fserr.PermissionDenied("files without extensions are not allowed")
		}
		return nil
	}

	for _, denied := range p.DeniedExtensions {
		if strings.EqualFold(ext, denied) {
			return fserr.PermissionDenied("file extension is not allowed")
		}
	}
	if len(p.AllowedExtensions) > 0 {
		for _, allowed := range p.AllowedExtensions {
			if strings.EqualFold(ext, allowed) {
				return nil
			}
		}
		return fserr.PermissionDenied("file extension is not in allowed extensions")
	}
	return nil
}

// fileExtension returns the extension of the final path component without
// the leading dot. Dotfiles like ".env" have no extension.
func fileExtension(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

func (p *Policy) checkHidden(path string) error {
	if p.AllowHidden {
		return nil
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return fserr.PermissionDenied("access to hidden files is not allowed")
	}
	return nil
}

// checkSymlink rejects a requested path that is itself a symbolic link
// when the policy disallows them. Resolution having changed the path is
// the cheap signal; the lstat confirms the request path is the link.
func (p *Policy) checkSymlink(abs, canonical string) error {
	if p.AllowSymlinks || abs == canonical {
		return nil
	}
	info, err := os.Lstat(abs)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fserr.PermissionDenied("symbolic links are not allowed")
	}
	return nil
}
