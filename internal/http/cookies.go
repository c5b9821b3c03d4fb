package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
)

const (
	// DefaultSessionCookieName names the visitor session cookie.
	DefaultSessionCookieName = "sf_session"
	// FlashCookieName carries one toast across a redirect.
	FlashCookieName = "sf_flash"

	flashMaxAge = 60
)

// CookieConfig describes the cookies the storefront sets on the browser.
type CookieConfig struct {
	// SessionName is the visitor session cookie (default: "sf_session").
	SessionName string
	// Domain is applied to every cookie set here. Empty means host-only.
	Domain string
	// Secure forces the Secure attribute. Requests over TLS get it regardless.
	Secure bool
	// CredentialNames are the backend cookies relayed to the browser and forwarded back.
	CredentialNames []string
}

func (c CookieConfig) sessionName() string {
	if c.SessionName == "" {
		return DefaultSessionCookieName
	}
	return c.SessionName
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || isForwardedHTTPS(r)
}

// sessionID returns the value of the session cookie, or "".
func (c CookieConfig) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(c.sessionName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSession writes the session cookie. It lives as long as the browser session;
// the server-side record has its own idle expiry.
func (c CookieConfig) setSession(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionName(),
		Value:    id,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// browserCredentials collects the credential cookies the browser sent.
func (c CookieConfig) browserCredentials(r *http.Request) domainauth.Credentials {
	var out domainauth.Credentials
	for _, cookie := range r.Cookies() {
		if cookie.Value == "" || !slices.Contains(c.CredentialNames, cookie.Name) {
			continue
		}
		out = append(out, domainauth.Credential{Name: cookie.Name, Value: cookie.Value})
	}
	return out
}

// relay copies backend Set-Cookie headers onto the browser response, rescoped to
// this host. Only configured credential cookies pass.
func (c CookieConfig) relay(w http.ResponseWriter, r *http.Request, cookies []*http.Cookie) {
	for _, src := range cookies {
		if src == nil || !slices.Contains(c.CredentialNames, src.Name) {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     src.Name,
			Value:    src.Value,
			Path:     "/",
			Domain:   c.Domain,
			Expires:  src.Expires,
			MaxAge:   src.MaxAge,
			HttpOnly: true,
			Secure:   c.secure(r),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// expire clears cookies by setting them to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (c CookieConfig) expire(w http.ResponseWriter, r *http.Request, names ...string) {
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.Domain,
			HttpOnly: true,
			Secure:   c.secure(r),
			MaxAge:   -1,
			Expires:  time.Unix(0, 0).UTC(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// expireCredentials clears every configured credential cookie plus any extra
// names the session held.
func (c CookieConfig) expireCredentials(w http.ResponseWriter, r *http.Request, held domainauth.Credentials) {
	names := slices.Clone(c.CredentialNames)
	for _, cred := range held {
		if !slices.Contains(names, cred.Name) {
			names = append(names, cred.Name)
		}
	}
	c.expire(w, r, names...)
}

// Flash is a toast carried across one redirect.
type Flash struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// setFlash stores f for the next full page render.
func (c CookieConfig) setFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   flashMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash, if any, and expires it.
func (c CookieConfig) popFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return Flash{}, false
	}
	c.expire(w, r, FlashCookieName)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}, false
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}
