package view

import "strings"

const (
	ActionSubmit ActionType = "submit"
	ActionReset  ActionType = "reset"
)

// AddActionID is the transport id of the add affordance for the list at
// listPath.
func AddActionID(listPath string) string {
	return string(ActionAdd) + ":" + listPath
}

// RemoveActionID is the transport id of the remove affordance for the row at
// rowPath.
func RemoveActionID(rowPath string) string {
	return string(ActionRemove) + ":" + rowPath
}

// ParseActionID splits an action id into its type and target path. Submit
// and reset carry no target.
func ParseActionID(id string) (ActionType, string, bool) {
	id = strings.TrimSpace(id)
	kind, target, _ := strings.Cut(id, ":")
	switch ActionType(kind) {
	case ActionAdd, ActionRemove:
		target = strings.TrimSpace(target)
		if target == "" {
			return "", "", false
		}
		return ActionType(kind), target, true
	case ActionSubmit, ActionReset:
		return ActionType(kind), "", true
	default:
		return "", "", false
	}
}
