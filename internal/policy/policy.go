// Package policy implements the declarative access policy and the path
// validation that every filesystem operation must pass before any I/O
// happens.
//
// A Policy is constructed once and never mutated afterwards, so any number
// of validations may run against it concurrently. Validation works on
// canonical paths only: the requested path is resolved (symlinks, ".",
// "..") before containment is tested, which is what defeats traversal
// strings that merely look like they stay inside an allowed root.
package policy

// Policy is the declarative rule set for filesystem access. The zero value
// allows all paths and extensions, applies no size cap, and denies
// symlinks and hidden files.
type Policy struct {
	// AllowedPaths is the directory allow-list. Empty means all paths are
	// allowed, subject to DeniedPaths.
	AllowedPaths []string `yaml:"allowed_paths"`

	// DeniedPaths always takes precedence over AllowedPaths.
	DeniedPaths []string `yaml:"denied_paths"`

	// AllowedExtensions is the case-insensitive extension allow-list
	// (without leading dot). Empty means all extensions are allowed.
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// DeniedExtensions takes precedence over AllowedExtensions.
	DeniedExtensions []string `yaml:"denied_extensions"`

	// MaxFileSize is the size cap in bytes. Zero means unlimited.
	MaxFileSize int64 `yaml:"max_file_size"`

	// AllowSymlinks permits requested paths that are symbolic links.
	AllowSymlinks bool `yaml:"allow_symlinks"`

	// AllowHidden permits files and directories whose name starts with a dot.
	AllowHidden bool `yaml:"allow_hidden"`

	// ReadOnly disables every write-type operation.
	ReadOnly bool `yaml:"read_only"`
}

// Default returns the default policy: unrestricted paths and extensions,
// no size cap, symlinks and hidden files denied, writes enabled.
func Default() Policy {
	return Policy{}
}

// Permissive returns a policy that allows everything.
func Permissive() Policy {
	return Policy{
		AllowSymlinks: true,
		AllowHidden:   true,
	}
}

// Restricted returns a policy confined to a single directory with a
// 10 MiB size cap, symlinks and hidden files denied.
func Restricted(dir string) Policy {
	return Policy{
		AllowedPaths: []string{dir},
		MaxFileSize:  10 * 1024 * 1024,
	}
}

// ReadOnly returns a Restricted policy with writes disabled.
func ReadOnly(dir string) Policy {
	p := Restricted(dir)
	p.ReadOnly = true
	return p
}
