package httpx

import (
	"net/http"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/service"
)

const (
	loginSuccessMessage  = "Login successful! Welcome back!"
	signupSuccessMessage = "Account created successfully! Welcome!"
	forgotSentMessage    = "Password reset link sent to your email."
	forgotFailedMessage  = "500 internal server error."
	resetSuccessMessage  = "Password reset successfully! Please log in."
	resetFailedMessage   = "Reset failed. Please try again."
	resetNoTokenMessage  = "Invalid or missing reset token."
)

//nolint:gochecknoglobals // static page metadata
var (
	loginMeta  = PageMeta{Title: "Login", PageTitle: "Welcome Back", CurrentPage: PageLogin}
	signupMeta = PageMeta{Title: "Sign Up", PageTitle: "Create Account", CurrentPage: PageSignup}
	forgotMeta = PageMeta{Title: "Forgot Password", PageTitle: "Forgot Password", CurrentPage: PageForgotPassword}
	resetMeta  = PageMeta{Title: "Reset Password", PageTitle: "Reset Password", CurrentPage: PageResetPassword}
)

// LoginPage renders the login form.
// GET /login.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(w, r, loginMeta).With("From", fromParam(r)).Build()
	h.renderPage(w, r, data)
}

// Login authenticates the visitor and sends them back to where they came from.
// POST /login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)
	extra := map[string]any{"Form": form.echo(), "From": fromParam(r)}

	if errs, err := h.forms().Struct(form); err != nil || len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, FieldErrors: errs, PageMeta: loginMeta, Data: extra})
		return
	}

	res, err := h.Accounts.Login(r.Context(), SessionIDFromContext(r.Context()), CredentialsFromContext(r.Context()), form.input())
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Fallback:  service.LoginFailedMessage,
			PageMeta:  loginMeta,
			Data:      extra,
			ShowToast: true,
		})
		return
	}

	h.Cookies.relay(w, r, res.Cookies)
	h.flash(w, r, loginSuccessMessage, ToastSuccess)
	redirect(w, r, domainauth.PublicRedirectTarget(fromParam(r), "/"))
}

// SignupPage renders the registration form.
// GET /signup.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(w, r, signupMeta).With("From", fromParam(r)).Build()
	h.renderPage(w, r, data)
}

// Signup registers an account and signs the visitor in.
// POST /signup.
func (h *UIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	form := parseSignupForm(r)
	extra := map[string]any{"Form": form.echo(), "From": fromParam(r)}

	if errs, err := h.forms().Struct(form); err != nil || len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, FieldErrors: errs, PageMeta: signupMeta, Data: extra})
		return
	}

	res, err := h.Accounts.Signup(r.Context(), SessionIDFromContext(r.Context()), CredentialsFromContext(r.Context()), form.input())
	if err != nil {
		h.logger().InfoContext(r.Context(), "signup rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Fallback:  service.SignupFailedMessage,
			PageMeta:  signupMeta,
			Data:      extra,
			ShowToast: true,
		})
		return
	}

	h.Cookies.relay(w, r, res.Cookies)
	h.flash(w, r, signupSuccessMessage, ToastSuccess)
	redirect(w, r, domainauth.PublicRedirectTarget(fromParam(r), "/"))
}

// ForgotPasswordPage renders the reset-link request form.
// GET /forgot-password.
func (h *UIHandlers) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{Meta: forgotMeta})
}

// ForgotPassword asks the backend to mail a reset link.
// POST /forgot-password.
func (h *UIHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	form := parseForgotPasswordForm(r)
	extra := map[string]any{"Form": map[string]string{"email": form.Email}}

	if errs, err := h.forms().Struct(form); err != nil || len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, FieldErrors: errs, PageMeta: forgotMeta, Data: extra})
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), CredentialsFromContext(r.Context()), form.Email); err != nil {
		h.logger().WarnContext(r.Context(), "forgot password failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Message:   forgotFailedMessage,
			PageMeta:  forgotMeta,
			Data:      extra,
			ShowToast: true,
		})
		return
	}

	data := h.NewTemplateData(w, r, forgotMeta).With("Sent", true).Build()
	h.toast(w, r, data, forgotSentMessage, ToastSuccess)
	h.renderPage(w, r, data)
}

// ResetPasswordPage renders the new-password form for an emailed token.
// GET /reset-password/{token}.
func (h *UIHandlers) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(w, r, resetMeta).With("Token", r.PathValue("token")).Build()
	h.renderPage(w, r, data)
}

// ResetPassword sets the new password and sends the visitor to the login page.
// POST /reset-password/{token}.
func (h *UIHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	extra := map[string]any{"Token": token}
	if token == "" {
		h.RenderError(ErrorOpts{W: w, R: r, Message: resetNoTokenMessage, PageMeta: resetMeta, Data: extra, ShowToast: true})
		return
	}

	form := parseResetPasswordForm(r)
	if errs, err := h.forms().Struct(form); err != nil || len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, FieldErrors: errs, PageMeta: resetMeta, Data: extra})
		return
	}

	if err := h.Accounts.ResetPassword(r.Context(), CredentialsFromContext(r.Context()), token, form.Password); err != nil {
		h.logger().InfoContext(r.Context(), "password reset rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Fallback:  resetFailedMessage,
			PageMeta:  resetMeta,
			Data:      extra,
			ShowToast: true,
		})
		return
	}

	h.flash(w, r, resetSuccessMessage, ToastSuccess)
	redirect(w, r, LoginPath)
}

// Logout clears the visitor's identity locally and expires the relayed cookies.
// The backend is not told.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	held, err := h.Accounts.Logout(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	h.Cookies.expireCredentials(w, r, held)
	redirect(w, r, "/")
}

// authStatus is the JSON snapshot served by /auth/status.
type authStatus struct {
	User          *domainauth.User `json:"user"`
	IsLoadingUser bool             `json:"isLoadingUser"`
	Error         string           `json:"error,omitempty"`
	Phase         domainauth.Phase `json:"phase"`
}

// AuthStatus reports the visitor's session state.
// GET /auth/status.
func (h *UIHandlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	state := domainauth.InitialState()
	if visit, ok := VisitFromContext(r.Context()); ok {
		state = visit.Session.State
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, authStatus{
		User:          state.User,
		IsLoadingUser: state.IsLoadingUser,
		Error:         state.Error,
		Phase:         state.Phase(),
	})
}

// Loading renders the placeholder shown while the visitor's session settles.
// Browsers reload after a second; htmx re-requests the current URL instead.
func (h *UIHandlers) Loading(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Loading", CurrentPage: PageLoading})
	data["RetryURL"] = safeRedirectPath(r.URL.RequestURI())
	if r.Method != http.MethodGet {
		data["RetryURL"] = redirectPathForRequest(r)
	}
	h.renderPage(w, r, data)
}
