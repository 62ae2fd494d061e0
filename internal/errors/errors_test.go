package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "dom error",
			code:    "E101",
			wantMsg: "Hierarchy request error",
			wantCat: CategoryDOM,
		},
		{
			name:    "protocol error",
			code:    "E300",
			wantMsg: "Malformed frame",
			wantCat: CategoryProtocol,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E102")
	if got, want := err.Error(), "E102: Node is not a child"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}

	wrapped := New("E400").Wrap(fmt.Errorf("boom"))
	if got, want := wrapped.Error(), "E400: Host call failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsMatchesCode(t *testing.T) {
	sentinel := New("E101")
	err := fmt.Errorf("append: %w", New("E101").WithDetail("cycle"))

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E102")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(Newf(CategoryDOM, "x"), Newf(CategoryDOM, "x")) {
		t.Error("uncoded errors must not compare equal")
	}
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New("E300")
	outer := New("E301").Wrap(inner)

	if !HasCode(outer, "E301") || !HasCode(outer, "E300") {
		t.Error("HasCode should find both codes")
	}
	if HasCode(outer, "E302") {
		t.Error("HasCode matched an absent code")
	}
	if HasCode(fmt.Errorf("plain"), "E300") {
		t.Error("HasCode matched a plain error")
	}
	if CodeOf(fmt.Errorf("ctx: %w", outer)) != "E301" {
		t.Errorf("CodeOf = %q", CodeOf(outer))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E400") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E101")
	if FromError(orig, "E400") != orig {
		t.Error("FromError should return existing *Error unchanged")
	}

	base := fmt.Errorf("io failure")
	e := FromError(base, "E400")
	if e.Code != "E400" || e.Wrapped != base {
		t.Errorf("FromError = %+v", e)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E101").WithSuggestion("Detach the node first").Wrap(fmt.Errorf("cycle"))
	out := err.Format()

	for _, want := range []string{
		"ERROR E101: Hierarchy request error",
		"Hint: Detach the node first",
		"Caused by: cycle",
		"Learn more: https://hostdom.dev/docs/errors/E101",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "E101: Hierarchy request error" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestRegistryCodesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Codes() {
		if seen[c] {
			t.Errorf("duplicate code %s", c)
		}
		seen[c] = true
		tmpl, ok := Lookup(c)
		if !ok || tmpl.Message == "" {
			t.Errorf("code %s has no message", c)
		}
	}
}
