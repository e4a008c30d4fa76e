package form

import "fmt"

// Mode selects between creating a new record and editing an existing one.
// Build it with Create or Edit; the zero value is Create.
type Mode struct {
	edit bool
	id   string
}

// Create returns the mode for a new record.
func Create() Mode {
	return Mode{}
}

// Edit returns the mode for updating the record with the given id.
func Edit(id string) Mode {
	return Mode{edit: true, id: id}
}

// IsEdit reports whether the mode targets an existing record.
func (m Mode) IsEdit() bool {
	return m.edit
}

// ResourceID returns the edited record's id, or "" in Create mode.
func (m Mode) ResourceID() string {
	return m.id
}

func (m Mode) String() string {
	if m.edit {
		return fmt.Sprintf("edit(%s)", m.id)
	}
	return "create"
}
