package user

// Status is the initialization state of the registry.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusReady         Status = "ready"
)

// Mode tells whether a submit creates a new user or updates the editing target.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Snapshot is an immutable copy of the registry state at one version.
type Snapshot struct {
	Version   uint64 `json:"version"`
	Status    Status `json:"status"`
	Users     []User `json:"users"`
	Draft     Draft  `json:"draft"`
	EditingID *int64 `json:"editing_id,omitempty"`
	Mode      Mode   `json:"mode"`
	LoadError string `json:"load_error,omitempty"`
}

// SubmitLabel returns the caption of the form's submit button.
func (s Snapshot) SubmitLabel() string {
	if s.Mode == ModeEdit {
		return "Update User"
	}
	return "Create User"
}

