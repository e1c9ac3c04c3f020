// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build identity stamped into the binary.
package version

// Info is filled from -ldflags at build time; a binary built without them
// reports the zero value.
type Info struct {
	Version   string // git tag, e.g. "v0.3.1"
	GitCommit string // short commit hash
	BuildTime string // RFC3339 build timestamp
}

// String renders the identity in the form shown by the -version flag.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	commit := i.GitCommit
	if commit == "" {
		commit = "unknown"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return v + " (commit: " + commit + ", built: " + built + ")"
}
