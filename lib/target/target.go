// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package target parses domain and service specifiers.
//
// A specifier names a management domain and, optionally, one service in
// it:
//
//	system                  the system domain
//	system/<name>           a service in the system domain
//	user/<uid>[/<name>]     a per-user domain or a service in it
//	gui/<uid>[/<name>]      a per-user GUI domain
//	session/<asid>[/<name>] a per-session domain
//	pid/<pid>[/<name>]      a per-process domain
//
// The system domain has no handle slot. Every other domain requires a
// decimal handle. [Parse] reports only the structured result; which
// remote operation to use for a domain versus a service is the caller's
// decision.
package target

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bureau-foundation/launchctl/lib/value"
)

// Kind is the domain type code sent in the "type" request field.
type Kind int64

const (
	System  Kind = 1
	User    Kind = 2
	Login   Kind = 3
	Session Kind = 4
	Process Kind = 5
	Ports   Kind = 7
	GUI     Kind = 8
)

// Request field names written by [Target.Apply].
const (
	KeyType   = "type"
	KeyHandle = "handle"
	KeyName   = "name"
)

// ErrBadName reports a specifier whose shape is not recognised: unknown
// domain, or a missing or non-numeric handle.
var ErrBadName = errors.New("unrecognized target specifier")

// ErrUsage reports a specifier that is well-formed but names an illegal
// handle.
var ErrUsage = errors.New("invalid target handle")

// ParseError carries the offending specifier. It unwraps to
// [ErrBadName] or [ErrUsage].
type ParseError struct {
	Spec   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Err, e.Spec, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Domain is an addressable scope of services. Handle is a uid, audit
// session id, or pid, and is zero for the system and ports domains.
type Domain struct {
	Kind   Kind
	Handle int64
}

// Target is a domain plus an optional service name. An empty Name
// addresses the domain itself.
type Target struct {
	Domain Domain
	Name   string
}

// SystemDomain returns the target used by legacy commands that always
// operate on the system domain.
func SystemDomain() Target {
	return Target{Domain: Domain{Kind: System}}
}

// IsService reports whether the target names a service rather than a
// whole domain.
func (t Target) IsService() bool {
	return t.Name != ""
}

// WithName returns a copy of t addressing the named service.
func (t Target) WithName(name string) Target {
	t.Name = name
	return t
}

var domainKinds = map[string]Kind{
	"user":    User,
	"gui":     GUI,
	"session": Session,
	"pid":     Process,
}

// Parse resolves a specifier into a [Target].
func Parse(spec string) (Target, error) {
	domainName, rest, hasRest := strings.Cut(spec, "/")
	if domainName == "" {
		return Target{}, &ParseError{Spec: spec, Reason: "missing domain", Err: ErrBadName}
	}

	if domainName == "system" {
		// The whole remainder is the name, so "system/a/b" names "a/b".
		return Target{Domain: Domain{Kind: System}, Name: rest}, nil
	}

	kind, known := domainKinds[domainName]
	if !known {
		return Target{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("unknown domain %q", domainName), Err: ErrBadName}
	}
	if !hasRest || rest == "" {
		return Target{}, &ParseError{Spec: spec, Reason: domainName + " domain requires a handle", Err: ErrBadName}
	}

	handleText, name, _ := strings.Cut(rest, "/")
	if handleText == "" {
		return Target{}, &ParseError{Spec: spec, Reason: domainName + " domain requires a handle", Err: ErrBadName}
	}
	handle, err := strconv.ParseInt(handleText, 10, 64)
	if err != nil {
		return Target{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("handle %q is not a decimal number", handleText), Err: ErrBadName}
	}
	if handle < 0 {
		return Target{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("handle %d is not valid", handle), Err: ErrUsage}
	}

	return Target{Domain: Domain{Kind: kind, Handle: handle}, Name: name}, nil
}

// Apply writes the target's type, handle, and (if set) name into msg.
func (t Target) Apply(msg *value.Map) {
	msg.SetInt(KeyType, int64(t.Domain.Kind))
	msg.SetInt(KeyHandle, t.Domain.Handle)
	if t.Name != "" {
		msg.SetString(KeyName, t.Name)
	}
}

// FromMessage reconstructs the target a request was addressed to. Fields
// that are missing read as zero.
func FromMessage(msg *value.Map) Target {
	kind, _ := msg.GetInt(KeyType)
	handle, _ := msg.GetInt(KeyHandle)
	name, _ := msg.GetString(KeyName)
	return Target{Domain: Domain{Kind: Kind(kind), Handle: handle}, Name: name}
}

// Describe renders the domain the way diagnostics refer to it.
func (d Domain) Describe() string {
	switch d.Kind {
	case System:
		return "system"
	case User:
		return fmt.Sprintf("uid: %d", d.Handle)
	case Login:
		return fmt.Sprintf("login: %d", d.Handle)
	case Session:
		return fmt.Sprintf("asid: %d", d.Handle)
	case Process:
		return fmt.Sprintf("pid: %d", d.Handle)
	case Ports:
		return "ports"
	case GUI:
		return fmt.Sprintf("user gui: %d", d.Handle)
	default:
		return fmt.Sprintf("type %d: %d", d.Kind, d.Handle)
	}
}

// String returns the specifier form of the target.
func (t Target) String() string {
	var domain string
	switch t.Domain.Kind {
	case System:
		if t.Name == "" {
			return "system"
		}
		return "system/" + t.Name
	case User:
		domain = "user"
	case GUI:
		domain = "gui"
	case Session:
		domain = "session"
	case Process:
		domain = "pid"
	default:
		return t.Domain.Describe()
	}
	spec := domain + "/" + strconv.FormatInt(t.Domain.Handle, 10)
	if t.Name != "" {
		spec += "/" + t.Name
	}
	return spec
}
