// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"fmt"
	"io"
	"strings"
)

// Placeholder text for handles, which are never dereferenced.
const (
	DescriptorPlaceholder = "file-descriptor-object"
	PortPlaceholder       = "mach-port-object"
)

// Render writes v to w at the given nesting depth. Each nesting level is
// one tab. Scalars occupy one line terminated by ";". Lists and maps
// open a bracket on the current line, render their children at
// indent+1, and close the bracket at indent. Map entries are written in
// the map's own order.
func Render(w io.Writer, v Value, indent int) error {
	p := printer{w: w}
	p.render(v, "", false, indent)
	return p.err
}

// RenderEntry is like [Render] but prefixes the first line with the
// quoted key, as map entries are printed.
func RenderEntry(w io.Writer, key string, v Value, indent int) error {
	p := printer{w: w}
	p.render(v, key, true, indent)
	return p.err
}

// Sprint renders v at depth zero and returns the text.
func Sprint(v Value) string {
	var builder strings.Builder
	// strings.Builder never fails.
	_ = Render(&builder, v, 0)
	return builder.String()
}

// printer keeps the first write error so the recursive descent does
// not have to thread it through every level.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) tabs(indent int) {
	if indent > 0 {
		p.printf("%s", strings.Repeat("\t", indent))
	}
}

func (p *printer) render(v Value, key string, named bool, indent int) {
	p.tabs(indent)
	if named {
		p.printf("\"%s\" = ", key)
	}

	switch v := v.(type) {
	case String:
		p.printf("\"%s\";\n", string(v))
	case Int:
		p.printf("%d;\n", int64(v))
	case Double:
		p.printf("%f;\n", float64(v))
	case Bool:
		p.printf("%t;\n", bool(v))
	case Null:
		p.printf("null;\n")
	case Blob:
		p.printf("<data: %d bytes>;\n", len(v))
	case Descriptor:
		p.printf("%s;\n", DescriptorPlaceholder)
	case Port:
		p.printf("%s;\n", PortPlaceholder)
	case List:
		p.printf("(\n")
		for _, item := range v {
			p.render(item, "", false, indent+1)
		}
		p.tabs(indent)
		p.printf(");\n")
	case *Map:
		p.printf("{\n")
		for entryKey, entry := range v.All() {
			p.render(entry, entryKey, true, indent+1)
		}
		p.tabs(indent)
		p.printf("};\n")
	case nil:
		p.printf("null;\n")
	}
}
