// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"slices"
	"testing"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/launchd/launchdtest"
	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

func serviceEntry(pid, status int64) *value.Map {
	entry := value.NewMap()
	entry.SetInt(KeyPID, pid)
	entry.SetInt(KeyStatus, status)
	return entry
}

func TestListTable(t *testing.T) {
	h := newHarness(t)
	services := value.NewMap()
	services.Set("com.example.running", serviceEntry(812, 0))
	services.Set("com.example.failed", serviceEntry(0, 3<<8))
	services.Set("com.example.killed", serviceEntry(0, 9))
	services.Set("com.example.stopped", serviceEntry(0, 0x137f))
	services.Set("com.example.odd", value.String("not a map"))
	reply := launchdtest.Reply(0)
	reply.Set(KeyServices, services)
	h.reply(launchd.RoutineList, reply)

	if status := h.run("list"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	want := "PID\tStatus\tLabel\n" +
		"812\t0\tcom.example.running\n" +
		"-\t3\tcom.example.failed\n" +
		"-\t-9\tcom.example.killed\n" +
		"-\t???\tcom.example.stopped\n" +
		"-\t0\tcom.example.odd\n"
	if h.stdout.String() != want {
		t.Errorf("stdout =\n%s\nwant\n%s", h.stdout, want)
	}
	wantTarget(t, h.request(t, launchd.RoutineList), target.SystemDomain())
}

func TestListService(t *testing.T) {
	h := newHarness(t)
	service := value.NewMap()
	service.SetString("Label", "com.example.agent")
	service.SetInt("PID", 812)
	reply := launchdtest.Reply(0)
	reply.Set(KeyService, service)
	h.reply(launchd.RoutineList, reply)

	if status := h.run("list", "com.example.agent"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	want := "{\n\t\"Label\" = \"com.example.agent\";\n\t\"PID\" = 812;\n};\n"
	if h.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", h.stdout, want)
	}
	wantTarget(t, h.request(t, launchd.RoutineList), target.SystemDomain().WithName("com.example.agent"))
}

func TestListMalformedReply(t *testing.T) {
	for _, args := range [][]string{{"list"}, {"list", "com.example.agent"}} {
		h := newHarness(t)
		h.reply(launchd.RoutineList, launchdtest.Reply(0))

		if status := h.run(args...); status != int(launchd.EBADRESP) {
			t.Errorf("%q: status = %d, want %d", args, status, launchd.EBADRESP)
		}
	}
}

func TestSetenv(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineSetenv, launchdtest.Reply(0))

	if status := h.run("setenv", "PATH", "/usr/bin", "LANG", "C"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	request := h.request(t, launchd.RoutineSetenv)
	wantTarget(t, request, target.SystemDomain())
	variables, ok := request.GetMap(KeyEnvironment)
	if !ok {
		t.Fatal("request has no environment map")
	}
	if keys := variables.Keys(); !slices.Equal(keys, []string{"PATH", "LANG"}) {
		t.Errorf("keys = %q", keys)
	}
	if path, _ := variables.GetString("PATH"); path != "/usr/bin" {
		t.Errorf("PATH = %q", path)
	}
}

func TestSetenvOddArguments(t *testing.T) {
	h := newHarness(t)

	if status := h.run("setenv", "PATH", "/usr/bin", "LANG"); status != 64 {
		t.Errorf("status = %d, want 64", status)
	}
	if len(h.server.Requests()) != 0 {
		t.Error("a request was sent for an odd argument count")
	}
}

func TestUnsetenvSendsNull(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineSetenv, launchdtest.Reply(0))

	if status := h.run("unsetenv", "PATH", "LANG"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	variables, ok := h.request(t, launchd.RoutineSetenv).GetMap(KeyEnvironment)
	if !ok {
		t.Fatal("request has no environment map")
	}
	for _, key := range []string{"PATH", "LANG"} {
		entry, ok := variables.Get(key)
		if !ok || entry.Kind() != value.KindNull {
			t.Errorf("%s = %v, want null", key, entry)
		}
	}
}

func TestSetenvNotPrivileged(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineSetenv, launchdtest.Reply(launchd.EPERM))

	if status := h.run("setenv", "PATH", "/usr/bin"); status != 1 {
		t.Errorf("status = %d, want 1", status)
	}
	if want := "Not privileged to set domain environment.\n"; h.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", h.stderr, want)
	}
}

func TestGetenv(t *testing.T) {
	h := newHarness(t)
	h.server.Handle(launchd.RoutineGetenv, func(request *value.Map) *value.Map {
		reply := launchdtest.Reply(0)
		name, _ := request.GetString(KeyVariable)
		reply.SetString(KeyValue, "value of "+name)
		return reply
	})

	if status := h.run("getenv", "PATH"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	if h.stdout.String() != "value of PATH\n" {
		t.Errorf("stdout = %q", h.stdout)
	}
}

func TestLegacyLoad(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineLoad, launchdtest.Reply(0))

	if status := h.run("load", "-wF", "agent.plist"); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	request := h.request(t, launchd.RoutineLoad)
	wantTarget(t, request, target.SystemDomain())
	if paths := stringList(t, request, KeyPaths); !slices.Equal(paths, []string{"/work/agent.plist"}) {
		t.Errorf("paths = %q", paths)
	}
	for _, key := range []string{KeyEnable, KeyLegacyLoad, KeyForce} {
		if set, _ := request.GetBool(key); !set {
			t.Errorf("%s is not set", key)
		}
	}
}

func TestLegacyUnloadDomains(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineUnload, launchdtest.Reply(0))

	status := h.run("unload", "-S", "Aqua", "-D", "network", "-D", "system", "/tmp/agent.plist")
	if status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, h.stderr)
	}
	want := "Session types are not supported. Ignoring session specifier: Aqua\n" +
		"Ignoring network domain.\n"
	if h.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", h.stderr, want)
	}

	request := h.request(t, launchd.RoutineUnload)
	wantPaths := append(slices.Clone(daemonDirectories), "/tmp/agent.plist")
	if paths := stringList(t, request, KeyPaths); !slices.Equal(paths, wantPaths) {
		t.Errorf("paths = %q, want %q", paths, wantPaths)
	}
	if disable, ok := request.GetBool(KeyDisable); !ok || disable {
		t.Errorf("disable = %v (present %v), want false", disable, ok)
	}
	if _, ok := request.Get(KeyForce); ok {
		t.Error("force is set without -F")
	}
}

func TestLegacyLoadUnknownDomain(t *testing.T) {
	h := newHarness(t)

	if status := h.run("load", "-D", "galaxy", "/tmp/agent.plist"); status != 64 {
		t.Errorf("status = %d, want 64", status)
	}
}

func TestLegacyLoadItemErrorsSucceed(t *testing.T) {
	h := newHarness(t)
	h.reply(launchd.RoutineLoad, itemErrorReply("/tmp/agent.plist", launchd.EALREADY))

	if status := h.run("load", "/tmp/agent.plist"); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if want := "/tmp/agent.plist: service already loaded\n"; h.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", h.stderr, want)
	}
}
