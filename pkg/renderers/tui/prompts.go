package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// promptField asks for a new value of a field node and writes it through the
// node's binding. Unchanged answers leave the model untouched.
func (s *Session) promptField(ctx context.Context, node view.Node) error {
	if node.Field == nil || node.Binding == nil {
		return nil
	}
	widget := node.Widget
	if widget == nil {
		resolved, ok := s.form.Registry().Lookup(node.Control)
		if !ok {
			s.logger.Warn("skipping field without widget", "path", node.Name, "control", node.Control)
			return nil
		}
		widget = &resolved
	}
	for _, msg := range s.errors[node.Name] {
		s.reportError(ctx, fmt.Sprintf("%s: %s", node.Name, msg))
	}

	value, changed, err := s.ask(ctx, widget.Family, *node.Field)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := node.Binding.Set(value); err != nil {
		return fmt.Errorf("tui: set %s: %w", node.Name, err)
	}
	return nil
}

func (s *Session) ask(ctx context.Context, family widgets.Family, field widgets.Field) (any, bool, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}
	help := fieldHelp(field)

	switch family {
	case widgets.FamilyToggle:
		resp, err := s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: field.Checked, Help: help})
		if err != nil {
			return nil, false, err
		}
		return resp, field.Value == nil || resp != field.Checked, nil
	case widgets.FamilyChoice:
		if len(field.Options) > 0 {
			return s.askChoice(ctx, message, help, field)
		}
	case widgets.FamilyMultiChoice:
		if len(field.Options) > 0 {
			return s.askMultiChoice(ctx, message, help, field)
		}
	case widgets.FamilyNumber:
		return s.askNumber(ctx, message, help, field)
	case widgets.FamilyRange:
		return s.askRange(ctx, message, help, field)
	case widgets.FamilyJSON:
		return s.askJSON(ctx, message, help, field)
	}
	return s.askText(ctx, family, message, help, field)
}

func (s *Session) askText(ctx context.Context, family widgets.Family, message, help string, field widgets.Field) (any, bool, error) {
	for {
		var (
			resp string
			err  error
		)
		switch family {
		case widgets.FamilyPassword:
			resp, err = s.driver.Password(ctx, InputConfig{Message: message, Help: help})
		case widgets.FamilyTextArea:
			resp, err = s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Display, Help: help})
		default:
			resp, err = s.driver.Input(ctx, InputConfig{
				Message:     message,
				Default:     field.Display,
				Help:        help,
				Placeholder: field.Props.Placeholder,
			})
		}
		if err != nil {
			return nil, false, err
		}
		if field.Props.Required && strings.TrimSpace(resp) == "" {
			s.reportError(ctx, fmt.Sprintf("Invalid %s: value is required", field.Name))
			continue
		}
		return resp, resp != field.Display, nil
	}
}

func (s *Session) askNumber(ctx context.Context, message, help string, field widgets.Field) (any, bool, error) {
	for {
		resp, err := s.driver.Input(ctx, InputConfig{Message: message, Default: field.Display, Help: help})
		if err != nil {
			return nil, false, err
		}
		resp = strings.TrimSpace(resp)
		if resp == "" {
			if field.Props.Required {
				s.reportError(ctx, fmt.Sprintf("Invalid %s: value is required", field.Name))
				continue
			}
			return nil, false, nil
		}
		number, err := strconv.ParseFloat(resp, 64)
		if err != nil {
			s.reportError(ctx, fmt.Sprintf("Invalid %s: %q is not a number", field.Name, resp))
			continue
		}
		if err := checkBounds(number, field.Props); err != nil {
			s.reportError(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}
		return number, resp != field.Display, nil
	}
}

func checkBounds(value float64, props widgets.Props) error {
	if props.Min != nil && value < *props.Min {
		return fmt.Errorf("must be at least %s", strconv.FormatFloat(*props.Min, 'f', -1, 64))
	}
	if props.Max != nil && value > *props.Max {
		return fmt.Errorf("must be at most %s", strconv.FormatFloat(*props.Max, 'f', -1, 64))
	}
	return nil
}

func (s *Session) askChoice(ctx context.Context, message, help string, field widgets.Field) (any, bool, error) {
	labels := optionLabels(field.Options)
	current := -1
	for idx, opt := range field.Options {
		if opt.Selected {
			current = idx
			break
		}
	}
	choice, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: current, Help: help})
	if err != nil {
		return nil, false, err
	}
	if choice < 0 || choice >= len(field.Options) {
		return nil, false, fmt.Errorf("%w: %d", ErrNoSelection, choice)
	}
	return field.Options[choice].Value, choice != current, nil
}

func (s *Session) askMultiChoice(ctx context.Context, message, help string, field widgets.Field) (any, bool, error) {
	labels := optionLabels(field.Options)
	var defaults []int
	for idx, opt := range field.Options {
		if opt.Selected {
			defaults = append(defaults, idx)
		}
	}
	picked, err := s.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: help})
	if err != nil {
		return nil, false, err
	}
	values := make([]any, 0, len(picked))
	for _, idx := range picked {
		if idx < 0 || idx >= len(field.Options) {
			return nil, false, fmt.Errorf("%w: %d", ErrNoSelection, idx)
		}
		values = append(values, field.Options[idx].Value)
	}
	return values, !sameIndices(defaults, picked), nil
}

func (s *Session) askRange(ctx context.Context, message, help string, field widgets.Field) (any, bool, error) {
	start, err := s.driver.Input(ctx, InputConfig{Message: message + " (from)", Default: field.Range[0], Help: help})
	if err != nil {
		return nil, false, err
	}
	end, err := s.driver.Input(ctx, InputConfig{Message: message + " (to)", Default: field.Range[1], Help: help})
	if err != nil {
		return nil, false, err
	}
	if start == field.Range[0] && end == field.Range[1] {
		return nil, false, nil
	}
	return []any{start, end}, true, nil
}

func (s *Session) askJSON(ctx context.Context, message, help string, field widgets.Field) (any, bool, error) {
	for {
		resp, err := s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Display, Help: help})
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(resp) == "" {
			return nil, false, nil
		}
		if resp == field.Display {
			return nil, false, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(resp), &decoded); err != nil {
			s.reportError(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}
		return decoded, true, nil
	}
}

func fieldHelp(field widgets.Field) string {
	for _, key := range []string{"tooltip", "extra", "help"} {
		if value, ok := field.ItemProps[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func optionLabels(options []widgets.Option) []string {
	out := make([]string, len(options))
	for idx, opt := range options {
		out[idx] = opt.Label
		if out[idx] == "" {
			out[idx] = opt.Key
		}
	}
	return out
}

func sameIndices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
