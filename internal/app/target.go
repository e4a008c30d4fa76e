package app

import (
	"fmt"
	"strings"

	"github.com/clubdesk/clubdesk/internal/form"
)

// Target is the screen requested on the command line.
type Target struct {
	Mode form.Mode
	// Set is false when no target was given; the UI then opens the list and
	// plain mode creates a record.
	Set bool
}

// ParseTarget reads "new" or "edit ID" from the positional arguments.
func ParseTarget(args []string) (Target, error) {
	switch {
	case len(args) == 0:
		return Target{Mode: form.Create()}, nil
	case len(args) == 1 && args[0] == "new":
		return Target{Mode: form.Create(), Set: true}, nil
	case len(args) == 2 && args[0] == "edit" && strings.TrimSpace(args[1]) != "":
		return Target{Mode: form.Edit(strings.TrimSpace(args[1])), Set: true}, nil
	}
	return Target{}, fmt.Errorf("unexpected arguments %q: want \"new\" or \"edit ID\"", strings.Join(args, " "))
}

// Path is the UI route for the target under listPath.
func (t Target) Path(listPath string) string {
	base := "/" + strings.Trim(listPath, "/")
	if t.Mode.IsEdit() {
		return base + "/" + t.Mode.ResourceID() + "/edit"
	}
	return base + "/new"
}
