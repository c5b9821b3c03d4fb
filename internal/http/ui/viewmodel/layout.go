package viewmodel

// User is the signed-in visitor as shown in the navbar.
type User struct {
	ID    string
	Name  string
	Email string
}

// DisplayName prefers the name and falls back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Toast is a message shown once when the page loads.
type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsLoadingUser   bool
	User            *User
	Toast           *Toast
}
