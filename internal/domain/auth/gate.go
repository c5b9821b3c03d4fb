package auth

// Decision is the outcome of a gate for one request.
type Decision int

const (
	// DecisionPlaceholder renders the loading placeholder and never the children.
	DecisionPlaceholder Decision = iota
	// DecisionRender passes the request through to the children.
	DecisionRender
	// DecisionRedirect sends the visitor elsewhere, replacing the history entry.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPlaceholder:
		return "placeholder"
	case DecisionRender:
		return "render"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// GateKind selects which branch of a gate renders the children.
type GateKind int

const (
	// GateProtected requires a session.
	GateProtected GateKind = iota
	// GatePublic requires the absence of a session.
	GatePublic
)

func (k GateKind) String() string {
	if k == GatePublic {
		return "public"
	}
	return "protected"
}

// DecideProtected: loading -> placeholder, user -> render, otherwise redirect to login.
func DecideProtected(s State) Decision {
	switch {
	case s.IsLoadingUser:
		return DecisionPlaceholder
	case s.User != nil:
		return DecisionRender
	default:
		return DecisionRedirect
	}
}

// DecidePublic mirrors DecideProtected with the user branches swapped.
func DecidePublic(s State) Decision {
	switch {
	case s.IsLoadingUser:
		return DecisionPlaceholder
	case s.User != nil:
		return DecisionRedirect
	default:
		return DecisionRender
	}
}

// Decide dispatches on kind.
func Decide(kind GateKind, s State) Decision {
	if kind == GatePublic {
		return DecidePublic(s)
	}
	return DecideProtected(s)
}

// NeedsFetch reports whether a gate observing s must trigger the session fetch.
// A present user never triggers one.
func NeedsFetch(s State) bool {
	return s.User == nil
}

// ShouldFetch reports whether a gate must ask the backend before deciding.
// A loading session always does. A settled anonymous session only does when the
// visitor presents credentials; with none the answer cannot change.
func ShouldFetch(s State, hasCredentials bool) bool {
	if !NeedsFetch(s) {
		return false
	}
	return s.IsLoadingUser || hasCredentials
}

// PublicRedirectTarget picks where an authenticated visitor leaves a public page for:
// the originally requested path when one was carried, else redirectTo, else "/".
// Callers are expected to have sanitised from.
func PublicRedirectTarget(from, redirectTo string) string {
	if from != "" {
		return from
	}
	if redirectTo != "" {
		return redirectTo
	}
	return "/"
}
