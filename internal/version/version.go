/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version holds build information.
package version

// Version is the current version of crewrota.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/crewrota/internal/version.Version=X.Y.Z
var Version = "0.4.0"

// ServiceName is reported to tracing backends and in the health endpoint.
const ServiceName = "crewrota"
