// SPDX-License-Identifier: MPL-2.0

//go:build linux

package fsmeta

import (
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks statx for STATX_BTIME. Older kernels and some filesystems
// (tmpfs before 5.x, NFS) leave the bit unset in the returned mask.
func birthTime(path string) (time.Time, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
