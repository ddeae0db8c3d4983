package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "sf-form"
	ClassHeader  ChromeClass = "sf-header"
	ClassErrors  ChromeClass = "sf-errors"
	ClassActions ChromeClass = "sf-actions"
	ClassGroup   ChromeClass = "sf-group"
	ClassGrid    ChromeClass = "sf-grid"
	ClassColumn  ChromeClass = "sf-column"
	ClassField   ChromeClass = "sf-field"
	ClassList    ChromeClass = "sf-list"
	ClassRow     ChromeClass = "sf-row"
	ClassAction  ChromeClass = "sf-action"
	ClassSlot    ChromeClass = "sf-slot"
)

// classes joins the chrome class with any caller supplied classes.
func classes(base ChromeClass, extra ...string) string {
	out := string(base)
	for _, value := range extra {
		if cleaned := sanitizeClassList(value); cleaned != "" {
			out += " " + cleaned
		}
	}
	return out
}

// modifier returns base followed by its BEM modifier class.
func modifier(base ChromeClass, name string) ChromeClass {
	return ChromeClass(string(base) + " " + string(base) + "--" + name)
}
