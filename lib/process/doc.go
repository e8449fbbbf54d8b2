// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for launchctl. Before the
// structured logger and the command layer exist, configuration and
// platform errors have nowhere to go but stderr; [Fatal] reports them
// in the same "error: ..." form the command layer uses for failures
// it has no specific message for.
package process
