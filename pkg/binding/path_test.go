package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Segment
	}{
		{name: "plain", in: "name", want: []Segment{{Field: "name", Index: -1}}},
		{name: "brackets", in: "items[0].title", want: []Segment{{Field: "items", Index: 0}, {Field: "title", Index: -1}}},
		{name: "dotted index", in: "items.2.tags.1", want: []Segment{{Field: "items", Index: 2}, {Field: "tags", Index: 1}}},
		{name: "json pointer", in: "#/outer/1/inner/0/leaf", want: []Segment{{Field: "outer", Index: 1}, {Field: "inner", Index: 0}, {Field: "leaf", Index: -1}}},
		{name: "escaped pointer", in: "/a~1b", want: []Segment{{Field: "a/b", Index: -1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePath(tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("segments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{"", "0.name", "items[0][1]"} {
		if _, err := ParsePath(in); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath for %q, got %v", in, err)
		}
	}
}

func TestParseLocation(t *testing.T) {
	ctx, key, index, err := ParseLocation("outer[1].inner[0].leaf")
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if key != "leaf" || index != -1 {
		t.Fatalf("unexpected key/index %q/%d", key, index)
	}
	if got := ctx.Path(key); got != "outer[1].inner[0].leaf" {
		t.Fatalf("round trip mismatch: %q", got)
	}

	ctx, key, index, err = ParseLocation("outer[1].inner[3]")
	if err != nil {
		t.Fatalf("parse row location: %v", err)
	}
	if key != "inner" || index != 3 || ctx.Path("") != "outer[1]" {
		t.Fatalf("unexpected row location ctx=%q key=%q index=%d", ctx.Path(""), key, index)
	}

	if _, _, _, err := ParseLocation("meta.title"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected unindexed parent to be rejected, got %v", err)
	}
}

func TestFormatPathRoundTrip(t *testing.T) {
	for _, path := range []string{"title", "items[2]", "outer[1].inner[0].title", "/outer/1/inner"} {
		segments, err := ParsePath(path)
		if err != nil {
			t.Fatalf("parse %q: %v", path, err)
		}
		formatted := FormatPath(segments)
		again, err := ParsePath(formatted)
		if err != nil {
			t.Fatalf("reparse %q: %v", formatted, err)
		}
		if FormatPath(again) != formatted {
			t.Fatalf("format not stable for %q: %q vs %q", path, formatted, FormatPath(again))
		}
	}
	if got := FormatPath([]Segment{{Field: "outer", Index: 1}, {Field: "inner", Index: -1}}); got != "outer[1].inner" {
		t.Fatalf("unexpected format %q", got)
	}
}
