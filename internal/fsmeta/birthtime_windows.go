// SPDX-License-Identifier: MPL-2.0

//go:build windows

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
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, attrs.CreationTime.Nanoseconds()), true
}
