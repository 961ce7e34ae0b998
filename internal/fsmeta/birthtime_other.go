// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package fsmeta

import "time"

func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
