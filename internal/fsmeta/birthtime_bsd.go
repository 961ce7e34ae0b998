// SPDX-License-Identifier: MPL-2.0

//go:build darwin || freebsd || netbsd

package fsmeta

import (
	"os"
	"syscall"
	"time"
)

func birthTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec)), true
}
