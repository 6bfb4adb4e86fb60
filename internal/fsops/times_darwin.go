//go:build darwin

package fsops

import (
	"os"
	"syscall"
)

// createdEpoch returns the file's creation time in epoch seconds where the
// platform reports one.
func createdEpoch(info os.FileInfo) *int64 {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	sec := sys.Birthtimespec.Sec
	return &sec
}
