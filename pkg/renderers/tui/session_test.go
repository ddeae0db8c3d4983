package tui

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	selectMenus  [][]string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectMenus = append(s.selectMenus, cfg.Options)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newSession(t *testing.T, nodes []schema.Node, model map[string]any, driver *stubDriver, opts ...Option) (*Session, *form.Form) {
	t.Helper()
	f, err := form.New(nodes, model)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	session, err := New(f, append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session, f
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, data)
	}
	return out
}

func listSchema() []schema.Node {
	return []schema.Node{
		{ControlType: "text", DataIndex: "name", Label: "Name"},
		{
			ControlType: "list",
			DataIndex:   "items",
			Label:       "Items",
			Children:    []schema.Node{{ControlType: "text", DataIndex: "title", Label: "Title"}},
		},
	}
}

func TestSessionAddsAndEditsRows(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "Bolts"},
		selectIdx: []int{0, 0, 3},
	}
	session, _ := newSession(t, listSchema(), map[string]any{}, driver)

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := map[string]any{
		"name":  "Ada",
		"items": []any{map[string]any{"title": "Bolts"}},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	wantMenus := [][]string{
		{"Add", "Done"},
		{"Edit items[0]", "Remove items[0]", "Add", "Done"},
		{"Edit items[0]", "Remove items[0]", "Add", "Done"},
	}
	if diff := cmp.Diff(wantMenus, driver.selectMenus); diff != "" {
		t.Fatalf("menus mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRemovesRows(t *testing.T) {
	model := map[string]any{
		"name": "Ada",
		"items": []any{
			map[string]any{"title": "a"},
			map[string]any{"title": "b"},
		},
	}
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{1, 3},
	}
	session, f := newSession(t, listSchema(), model, driver)

	if _, err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{map[string]any{"title": "b"}}
	if diff := cmp.Diff(want, f.Model()["items"]); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionUnchangedAnswersLeaveModelUntouched(t *testing.T) {
	model := map[string]any{}
	driver := &stubDriver{inputs: []string{""}}
	session, f := newSession(t, []schema.Node{{ControlType: "input", DataIndex: "name"}}, model, driver)

	if _, err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := f.Model()["name"]; ok {
		t.Fatalf("expected name to stay unset, got %#v", f.Model())
	}
}

func TestSessionNumberValidation(t *testing.T) {
	driver := &stubDriver{inputs: []string{"-1", "abc", "10"}}
	nodes := []schema.Node{{
		ControlType:  "input-number",
		DataIndex:    "count",
		Label:        "Count",
		ControlProps: map[string]any{"min": 0, "required": true},
	}}
	session, f := newSession(t, nodes, map[string]any{}, driver)

	if _, err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two validation messages, got %v", driver.infoMessages)
	}
	if got := f.Model()["count"]; got != float64(10) {
		t.Fatalf("expected count 10, got %#v", got)
	}
}

func TestSessionChoiceToggleAndJSON(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true},
		textAreas: []string{"{bad", `{"a":1}`},
	}
	nodes := []schema.Node{
		{ControlType: "select", DataIndex: "unit", ControlProps: map[string]any{"options": []any{"kg", "lb"}}},
		{ControlType: "checkbox-group", DataIndex: "tags", ControlProps: map[string]any{"options": []any{"x", "y", "z"}}},
		{ControlType: "switch", DataIndex: "active"},
		{ControlType: "json", DataIndex: "meta"},
	}
	session, _ := newSession(t, nodes, map[string]any{}, driver)

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[string]any{
		"unit":   "lb",
		"tags":   []any{"x", "z"},
		"active": true,
		"meta":   map[string]any{"a": float64(1)},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one json error, got %v", driver.infoMessages)
	}
}

func TestSessionShowsFieldErrors(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada"}}
	session, _ := newSession(t, []schema.Node{{ControlType: "input", DataIndex: "name"}}, map[string]any{}, driver,
		WithErrors(map[string][]string{"name": {"is taken"}}),
		WithTheme(Theme{ErrorPrefix: "! "}),
	)
	if _, err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"! name: is taken"}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionOutputFormats(t *testing.T) {
	model := map[string]any{
		"name":  "Ada",
		"tags":  []any{"x", "y"},
		"items": []any{map[string]any{"title": "Bolts"}},
	}
	f, err := form.New([]schema.Node{{ControlType: "input", DataIndex: "name"}}, model)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	formSession, err := New(f, WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	out, err := formSession.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	values, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	want := url.Values{"name": {"Ada"}, "tags": {"x", "y"}, "items[0].title": {"Bolts"}}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("form output mismatch (-want +got):\n%s", diff)
	}
	if formSession.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", formSession.ContentType())
	}

	prettySession, err := New(f, WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	out, err = prettySession.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	wantPretty := "items[0].title=Bolts\nname=Ada\ntags[0]=x\ntags[1]=y\n"
	if string(out) != wantPretty {
		t.Fatalf("unexpected pretty output %q", out)
	}
}

func TestSessionSubmitFailure(t *testing.T) {
	rejected := errors.New("rejected")
	f, err := form.New([]schema.Node{{ControlType: "input", DataIndex: "name"}}, map[string]any{},
		form.WithHandleOptions(form.WithValidateFunc(func(context.Context, map[string]any) error { return rejected })),
	)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	session, err := New(f, WithPromptDriver(&stubDriver{inputs: []string{"x"}}))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := session.Run(context.Background()); !errors.Is(err, rejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
}

func TestSessionPropagatesDriverErrors(t *testing.T) {
	session, _ := newSession(t, listSchema(), map[string]any{}, &stubDriver{})
	if _, err := session.Run(context.Background()); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestNewRequiresForm(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil form")
	}
}
