// SPDX-License-Identifier: MPL-2.0

// Package runconfig manages the JSON configuration file written for each
// training run.
//
// A Manager creates timestamped records (hyperparameters, interpreter and
// installed packages, repository branch and commit), loads them with
// validation, applies whole-key additions and removals, and finds the newest
// record in a directory either by the timestamp embedded in the file name or
// by file creation time.
//
// Every operation reopens the file; there is no in-memory cache and no
// locking between concurrent writers.
package runconfig
