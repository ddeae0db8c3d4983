// Package tui drives a form from the terminal. A Session walks the rendered
// tree, prompts for every field through a PromptDriver and edits lists
// through a menu of the list's actions, re-rendering after each structural
// change.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-schemaform/internal/logging"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/view"
)

// Session runs one interactive fill of a form.
type Session struct {
	form              *form.Form
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	errors            map[string][]string
	logger            *log.Logger
}

// New constructs a session for f with defaults (survey driver, JSON output).
func New(f *form.Form, options ...Option) (*Session, error) {
	if f == nil {
		return nil, errors.New("tui: form is required")
	}
	s := &Session{
		form:         f,
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s, nil
}

// ContentType reports the serialization format used by Run.
func (s *Session) ContentType() string {
	switch s.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts for the whole form, submits it and returns the serialized
// model.
func (s *Session) Run(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := s.form.Render()
	if err != nil {
		return nil, fmt.Errorf("tui: render: %w", err)
	}
	if err := s.walk(ctx, tree); err != nil {
		return nil, err
	}
	if err := s.form.Submit(ctx); err != nil {
		return nil, fmt.Errorf("tui: submit: %w", err)
	}

	values := s.form.Snapshot()
	if s.submitTransformer != nil {
		values, err = s.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return s.serialize(values)
}

func (s *Session) walk(ctx context.Context, nodes []view.Node) error {
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch node.Kind {
		case view.KindField:
			err = s.promptField(ctx, node)
		case view.KindList:
			err = s.editList(ctx, node.Name)
		case view.KindAction:
			// list actions are offered by the list menu
		case view.KindGroup:
			if node.Label != "" {
				s.info(ctx, node.Label)
			}
			err = s.walk(ctx, node.Children)
		case view.KindSlot, view.KindCustom:
			if node.Text != "" {
				s.info(ctx, node.Text)
			}
			err = s.walk(ctx, node.Children)
		default:
			err = s.walk(ctx, node.Children)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type menuEntry struct {
	label    string
	row      *view.Node
	actionID string
}

// editList loops over a menu of the list's rows and actions until the user
// picks done. The list is looked up again after every change so indices and
// affordances always reflect the model.
func (s *Session) editList(ctx context.Context, name string) error {
	for {
		tree, err := s.form.Render()
		if err != nil {
			return fmt.Errorf("tui: render: %w", err)
		}
		list, ok := view.FindByName(tree, view.KindList, name)
		if !ok {
			return fmt.Errorf("%w: %s", form.ErrListNotFound, name)
		}

		entries := listMenu(list)
		labels := make([]string, len(entries))
		for idx, entry := range entries {
			labels[idx] = entry.label
		}
		message := list.Label
		if message == "" {
			message = name
		}
		choice, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: len(labels) - 1,
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(entries) {
			return fmt.Errorf("%w: %d", ErrNoSelection, choice)
		}

		entry := entries[choice]
		switch {
		case entry.row != nil:
			if err := s.walk(ctx, entry.row.Children); err != nil {
				return err
			}
		case entry.actionID != "":
			if err := s.form.Dispatch(ctx, entry.actionID); err != nil {
				return fmt.Errorf("tui: %s: %w", entry.actionID, err)
			}
			s.logger.Debug("list action applied", "list", name, "action", entry.actionID)
		default:
			return nil
		}
	}
}

func listMenu(list view.Node) []menuEntry {
	var entries []menuEntry
	var add *menuEntry
	for idx := range list.Children {
		child := list.Children[idx]
		switch child.Kind {
		case view.KindRow:
			entries = append(entries, menuEntry{label: "Edit " + child.Name, row: &list.Children[idx]})
			for _, cell := range child.Children {
				if cell.Action != nil && cell.Action.Type == view.ActionRemove {
					entries = append(entries, menuEntry{label: actionLabel(cell) + " " + child.Name, actionID: cell.Action.ID})
				}
			}
		default:
			if child.Action != nil && child.Action.Type == view.ActionAdd {
				add = &menuEntry{label: actionLabel(child), actionID: child.Action.ID}
			}
		}
	}
	if add != nil {
		entries = append(entries, *add)
	}
	return append(entries, menuEntry{label: "Done"})
}

func actionLabel(node view.Node) string {
	if node.Text != "" {
		return node.Text
	}
	return string(node.Action.Type)
}

func (s *Session) info(ctx context.Context, msg string) {
	if err := s.driver.Info(ctx, s.theme.InfoPrefix+msg); err != nil {
		s.logger.Warn("write message", "err", err)
	}
}

func (s *Session) reportError(ctx context.Context, msg string) {
	if err := s.driver.Info(ctx, s.theme.ErrorPrefix+msg); err != nil {
		s.logger.Warn("write message", "err", err)
	}
}
