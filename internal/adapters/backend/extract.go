package backend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/storefront-web/internal/domain/auth"
)

// UserPaths are JMESPath expressions that locate the user object in a
// response envelope. Empty fields take the defaults.
type UserPaths struct {
	Current string
	Login   string
	Signup  string
}

// DefaultUserPaths matches the backend's documented envelopes: get-user wraps
// the user in "data", login returns it under "user", register may return it bare.
func DefaultUserPaths() UserPaths {
	return UserPaths{
		Current: "data",
		Login:   "user || data.user",
		Signup:  "user || data.user || @",
	}
}

var errNoUser = errors.New("no user object in response")

type searcher interface {
	Search(data any) (any, error)
}

type compiledPaths struct {
	current searcher
	login   searcher
	signup  searcher
}

func compilePaths(p UserPaths) (compiledPaths, error) {
	def := DefaultUserPaths()
	var out compiledPaths
	for _, entry := range []struct {
		name string
		expr string
		def  string
		dst  *searcher
	}{
		{"current", p.Current, def.Current, &out.current},
		{"login", p.Login, def.Login, &out.login},
		{"signup", p.Signup, def.Signup, &out.signup},
	} {
		expr := entry.expr
		if expr == "" {
			expr = entry.def
		}
		compiled, err := jmespath.Compile(expr)
		if err != nil {
			return compiledPaths{}, fmt.Errorf("compile %s user path %q: %w", entry.name, expr, err)
		}
		*entry.dst = compiled
	}
	return out, nil
}

// extractUser decodes body, evaluates expr and converts the result into a User.
// A non-object or empty result is an error.
func extractUser(expr searcher, body []byte) (domainauth.User, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return domainauth.User{}, fmt.Errorf("decode body: %w", err)
	}

	found, err := expr.Search(doc)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("evaluate user path: %w", err)
	}
	obj, ok := found.(map[string]any)
	if !ok || len(obj) == 0 {
		return domainauth.User{}, errNoUser
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("encode user: %w", err)
	}
	var user domainauth.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domainauth.User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}
