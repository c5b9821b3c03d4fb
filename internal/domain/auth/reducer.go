package auth

// ActionType identifies a session transition.
type ActionType string

const (
	ActionFetchPending    ActionType = "fetch/pending"
	ActionFetchFulfilled  ActionType = "fetch/fulfilled"
	ActionFetchRejected   ActionType = "fetch/rejected"
	ActionLoginPending    ActionType = "login/pending"
	ActionLoginFulfilled  ActionType = "login/fulfilled"
	ActionLoginRejected   ActionType = "login/rejected"
	ActionSignupPending   ActionType = "signup/pending"
	ActionSignupFulfilled ActionType = "signup/fulfilled"
	ActionSignupRejected  ActionType = "signup/rejected"
	ActionLogout          ActionType = "logout"
)

// Action is a transition request. User is set for fulfilled actions,
// Message for rejected ones.
type Action struct {
	Type    ActionType
	User    *User
	Message string
}

func FetchPending() Action            { return Action{Type: ActionFetchPending} }
func FetchFulfilled(u User) Action    { return Action{Type: ActionFetchFulfilled, User: &u} }
func FetchRejected(msg string) Action { return Action{Type: ActionFetchRejected, Message: msg} }
func LoginPending() Action            { return Action{Type: ActionLoginPending} }
func LoginFulfilled(u User) Action    { return Action{Type: ActionLoginFulfilled, User: &u} }
func LoginRejected(msg string) Action { return Action{Type: ActionLoginRejected, Message: msg} }
func SignupPending() Action           { return Action{Type: ActionSignupPending} }
func SignupFulfilled(u User) Action   { return Action{Type: ActionSignupFulfilled, User: &u} }
func SignupRejected(msg string) Action {
	return Action{Type: ActionSignupRejected, Message: msg}
}
func Logout() Action { return Action{Type: ActionLogout} }

// Reduce applies a to s and returns the next state. It never mutates s and
// unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	next := s
	switch a.Type {
	case ActionFetchPending, ActionLoginPending:
		next.IsLoadingUser = true
		next.Error = ""
	case ActionFetchFulfilled:
		next.User = cloneUser(a.User)
		next.IsLoadingUser = false
	case ActionFetchRejected:
		next.User = nil
		next.IsLoadingUser = false
	case ActionLoginFulfilled:
		next.User = cloneUser(a.User)
		next.IsLoadingUser = false
	case ActionLoginRejected:
		next.IsLoadingUser = false
		next.Error = a.Message
	case ActionSignupPending:
		next.Error = ""
	case ActionSignupFulfilled:
		next.User = cloneUser(a.User)
	case ActionSignupRejected:
		next.Error = a.Message
	case ActionLogout:
		next.User = nil
		next.IsLoadingUser = false
	}
	return next
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = make(map[string]any, len(u.Extra))
		for k, v := range u.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}
