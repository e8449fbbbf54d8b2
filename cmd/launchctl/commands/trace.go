// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Tracer prints every request and reply exchanged with the service
// manager. It implements [launchd.Observer].
type Tracer struct {
	w      io.Writer
	output *termenv.Output
}

// NewTracer returns a tracer writing to w. Headers are colored when the
// detected profile supports it; pass termenv.WithProfile(termenv.Ascii)
// for plain text.
func NewTracer(w io.Writer, options ...termenv.OutputOption) *Tracer {
	return &Tracer{w: w, output: termenv.NewOutput(w, options...)}
}

// ObserveRequest prints the outgoing request.
func (t *Tracer) ObserveRequest(routine launchd.Routine, request *value.Map) {
	header := t.output.String(fmt.Sprintf("-> %s (%d)", routine, int64(routine))).
		Foreground(t.output.Color("4")).Bold()
	fmt.Fprintln(t.w, header)
	_ = value.Render(t.w, request, 1)
}

// ObserveReply prints the reply, or the channel failure in its place.
func (t *Tracer) ObserveReply(routine launchd.Routine, reply *value.Map, err error) {
	color := "2"
	code, _ := reply.GetInt(launchd.KeyError)
	if err != nil || code != 0 {
		color = "1"
	}

	text := fmt.Sprintf("<- %s (%d)", routine, int64(routine))
	if err != nil {
		text += ": " + err.Error()
	}
	fmt.Fprintln(t.w, t.output.String(text).Foreground(t.output.Color(color)).Bold())
	if reply != nil {
		_ = value.Render(t.w, reply, 1)
	}
}
