//go:build !darwin

package fsops

import "os"

// createdEpoch returns nil on platforms that do not report a file creation
// time through os.FileInfo.
func createdEpoch(os.FileInfo) *int64 {
	return nil
}
