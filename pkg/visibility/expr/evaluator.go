// Package expr is the default visibility evaluator. Rules are small boolean
// expressions:
//
//	published
//	status == "draft" && !archived
//	rating >= 3 || extras.role == 'admin'
//	$root.kind != "book"
//
// Compiled rules are cached per evaluator.
package expr

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-schemaform/pkg/visibility"
)

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("visibility/expr: syntax error")

// Evaluator implements visibility.Evaluator.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]node
}

var _ visibility.Evaluator = (*Evaluator)(nil)

func New() *Evaluator {
	return &Evaluator{cache: make(map[string]node)}
}

func (e *Evaluator) Eval(rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	program, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	value, err := program.eval(ctx)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: %q: %w", rule, err)
	}
	return truthy(value), nil
}

// Compile parses rule without evaluating it, reporting syntax errors early.
func (e *Evaluator) Compile(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	e.mu.RLock()
	program, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	tokens, err := lex(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	program, err = p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, p.peek().text, rule)
	}

	e.mu.Lock()
	e.cache[rule] = program
	e.mu.Unlock()
	return program, nil
}
