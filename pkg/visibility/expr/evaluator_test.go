package expr

import (
	"errors"
	"testing"

	"github.com/goliatone/go-schemaform/pkg/visibility"
)

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{
		Root: map[string]any{
			"published": true,
			"status":    "draft",
			"rating":    float64(4),
			"count":     "3",
			"kind":      "book",
			"authors": []any{
				map[string]any{"name": "Ada", "active": "true"},
			},
			"meta": map[string]any{"lang": "en"},
		},
		Scope:  map[string]any{"name": "Grace", "active": false},
		Extras: map[string]any{"role": "admin"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{"", true},
		{"published", true},
		{"!published", false},
		{"published == true", true},
		{`status == "draft"`, true},
		{`status != 'draft'`, false},
		{"rating >= 4 && rating < 5", true},
		{"rating > 4", false},
		{"count == 3", true},
		{"count <= 2 || extras.role == 'admin'", true},
		{"!(published && status == 'draft')", false},
		{"meta.lang == 'en'", true},
		{"authors[0].active == true", true},
		{"authors[3].name", false},
		{"name == 'Grace'", true},
		{"$root.kind == 'book'", true},
		{"active", false},
		{"missing == null", true},
		{"missing", false},
		{"missing > 3", false},
	}
	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluatorScopeFallsBackToRoot(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{
		Root:  map[string]any{"mode": "advanced"},
		Scope: map[string]any{"title": "x"},
	}
	ok, err := New().Eval("mode == 'advanced' && title", ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected root fallback for identifiers missing from the row scope")
	}
}

func TestEvaluatorSyntaxErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{"a = b", "a &", "(a", "'open", "a ==", "a b", "#"} {
		if _, err := eval.Eval(rule, visibility.Context{}); !errors.Is(err, ErrSyntax) {
			t.Fatalf("Eval(%q) expected ErrSyntax, got %v", rule, err)
		}
		if err := eval.Compile(rule); !errors.Is(err, ErrSyntax) {
			t.Fatalf("Compile(%q) expected ErrSyntax, got %v", rule, err)
		}
	}
}

func TestEvaluatorRelationalTypeError(t *testing.T) {
	t.Parallel()

	_, err := New().Eval("title > 3", visibility.Context{Root: map[string]any{"title": "abc"}})
	if err == nil {
		t.Fatalf("expected type error comparing a string with a number")
	}
}

func TestEvaluatorCachesPrograms(t *testing.T) {
	t.Parallel()

	eval := New()
	if _, err := eval.Eval("a && b", visibility.Context{}); err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if _, ok := eval.cache["a && b"]; !ok {
		t.Fatalf("expected compiled rule to be cached")
	}
}
