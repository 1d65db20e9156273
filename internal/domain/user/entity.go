package user

// User represents a user entry in the registry.
type User struct {
	ID    int64  `json:"id"`    // ID is assigned from the registry size at creation time
	Name  string `json:"name"`  // Name is the display name of the user
	Email string `json:"email"` // Email is not format-checked
}

// Draft holds the form input that has not been committed to the registry yet.
type Draft struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// DraftOf copies the editable fields of u.
func DraftOf(u User) Draft {
	return Draft{Name: u.Name, Email: u.Email}
}
