package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the structural rules every render relies on. Leaf and list
// nodes need a dataIndex, every node needs a control type, and a data index
// must survive a round trip through a binding path. Hidden subtrees and nodes with a custom
// render override are not inspected.
func Validate(nodes []Node) error {
	return validateNodes(nodes, "")
}

func validateNodes(nodes []Node, prefix string) error {
	for i, node := range nodes {
		if err := validateNode(node, prefix, i); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(node Node, prefix string, position int) error {
	if node.Hidden || node.Render != nil {
		return nil
	}

	path := NodePath(prefix, node, position)
	if strings.TrimSpace(node.ControlType) == "" {
		return NewConfigError(path, node, "missing control type")
	}

	kind := node.Kind()
	if kind != KindGroup {
		if strings.TrimSpace(node.DataIndex) == "" {
			return NewConfigError(path, node, fmt.Sprintf("%s node requires a dataIndex", kind))
		}
		if msg := checkDataIndex(node.DataIndex); msg != "" {
			return NewConfigError(path, node, msg)
		}
	}

	switch kind {
	case KindGroup:
		return validateNodes(node.Children, prefix)
	case KindList:
		return validateNodes(node.Children, path+"[]")
	}
	return nil
}

// checkDataIndex reports why key cannot be addressed as a single path
// segment, or "" when it can.
func checkDataIndex(key string) string {
	switch {
	case key != strings.TrimSpace(key):
		return "dataIndex must not have leading or trailing whitespace"
	case strings.ContainsAny(key, ".[]/~"):
		return "dataIndex must not contain '.', '[', ']', '/' or '~'"
	case strings.HasPrefix(key, "#") || strings.HasPrefix(key, "$"):
		return "dataIndex must not start with '#' or '$'"
	}
	if _, err := strconv.Atoi(key); err == nil {
		return "dataIndex must not be numeric, it would parse as a row index"
	}
	return ""
}

// NodePath describes where a node sits for error messages. Groups do not
// contribute to data paths, so a group or an unbound node is identified by
// its position instead.
func NodePath(prefix string, node Node, position int) string {
	name := strings.TrimSpace(node.DataIndex)
	if name == "" || node.Kind() == KindGroup {
		name = fmt.Sprintf("#%d", position)
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
