// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderScalars(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("hello"), "\"hello\";\n"},
		{"int", Int(-42), "-42;\n"},
		{"double", Double(1.5), "1.500000;\n"},
		{"true", Bool(true), "true;\n"},
		{"false", Bool(false), "false;\n"},
		{"null", Null{}, "null;\n"},
		{"blob", Blob{1, 2, 3}, "<data: 3 bytes>;\n"},
		{"descriptor", Descriptor{FD: 7}, "file-descriptor-object;\n"},
		{"port", Port{Name: 0x1003}, "mach-port-object;\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Sprint(test.value); got != test.want {
				t.Errorf("Sprint(%v) = %q, want %q", test.value, got, test.want)
			}
		})
	}
}

func TestRenderMapKeepsOrderAndIndents(t *testing.T) {
	m := NewMap()
	m.SetInt("a", 1)
	m.SetString("b", "x")

	want := "{\n" +
		"\t\"a\" = 1;\n" +
		"\t\"b\" = \"x\";\n" +
		"};\n"
	if got := Sprint(m); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderReverseInsertionOrder(t *testing.T) {
	m := NewMap()
	m.SetInt("z", 1)
	m.SetInt("a", 2)

	got := Sprint(m)
	if strings.Index(got, "\"z\"") > strings.Index(got, "\"a\"") {
		t.Errorf("map entries were re-ordered:\n%s", got)
	}
}

func TestRenderListOfMapNestsOneLevelDeeper(t *testing.T) {
	inner := NewMap()
	inner.SetBool("enabled", true)

	want := "(\n" +
		"\t{\n" +
		"\t\t\"enabled\" = true;\n" +
		"\t};\n" +
		");\n"
	if got := Sprint(List{inner}); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderHonoursStartingIndent(t *testing.T) {
	m := NewMap()
	m.SetInt("pid", 12)

	var builder strings.Builder
	if err := Render(&builder, m, 2); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "\t\t{\n" +
		"\t\t\t\"pid\" = 12;\n" +
		"\t\t};\n"
	if builder.String() != want {
		t.Errorf("got %q, want %q", builder.String(), want)
	}
}

func TestRenderEntry(t *testing.T) {
	var builder strings.Builder
	if err := RenderEntry(&builder, "label", String("com.example.agent"), 1); err != nil {
		t.Fatalf("RenderEntry: %v", err)
	}
	want := "\t\"label\" = \"com.example.agent\";\n"
	if builder.String() != want {
		t.Errorf("got %q, want %q", builder.String(), want)
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errWriteFailed
}

var errWriteFailed = errors.New("write failed")

func TestRenderStopsAtFirstWriteError(t *testing.T) {
	m := NewMap()
	m.SetInt("a", 1)
	m.SetInt("b", 2)

	writer := &failingWriter{}
	err := Render(writer, m, 0)
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("Render error = %v, want %v", err, errWriteFailed)
	}
	if writer.writes != 1 {
		t.Errorf("writer called %d times after failure, want 1", writer.writes)
	}
}
