package httpx

import (
	"net/http"
	"strings"

	"github.com/target/storefront-web/internal/ports"
)

// LoginForm is the login page payload. Name accepts a username or an email.
type LoginForm struct {
	Name     string `form:"name"     validate:"min=2"`
	Password string `form:"password" validate:"required"`
}

// Messages implements validation.Messager.
func (LoginForm) Messages() map[string]string {
	return map[string]string{
		"name":     "Username or Email is required",
		"password": "Password is required",
	}
}

func (f LoginForm) input() ports.LoginInput {
	return ports.LoginInput{Name: f.Name, Password: f.Password}
}

// echo returns the values safe to put back into the form.
func (f LoginForm) echo() map[string]string {
	return map[string]string{"name": f.Name}
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Password: r.PostFormValue("password"),
	}
}

// SignupForm is the registration payload.
type SignupForm struct {
	Name     string `form:"name"     validate:"min=2,max=50"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"min=6,max=100"`
}

// Messages implements validation.Messager.
func (SignupForm) Messages() map[string]string {
	return map[string]string{
		"name.min":     "Name must be at least 2 characters",
		"name.max":     "Name must be less than 50 characters",
		"email":        "Please enter a valid email address",
		"password.min": "Password must be at least 6 characters",
		"password.max": "Password must be less than 100 characters",
	}
}

func (f SignupForm) input() ports.SignupInput {
	return ports.SignupInput{Name: f.Name, Email: f.Email, Password: f.Password}
}

func (f SignupForm) echo() map[string]string {
	return map[string]string{"name": f.Name, "email": f.Email}
}

func parseSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

// ForgotPasswordForm asks for a reset link.
type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

// Messages implements validation.Messager.
func (ForgotPasswordForm) Messages() map[string]string {
	return map[string]string{"email": "Please enter a valid email address"}
}

func parseForgotPasswordForm(r *http.Request) ForgotPasswordForm {
	return ForgotPasswordForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
}

// ResetPasswordForm sets a new password with an emailed token.
type ResetPasswordForm struct {
	Password        string `form:"password"        validate:"min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

// Messages implements validation.Messager.
func (ResetPasswordForm) Messages() map[string]string {
	return map[string]string{
		"password":        "Password must be at least 6 characters",
		"confirmPassword": "Passwords do not match",
	}
}

func parseResetPasswordForm(r *http.Request) ResetPasswordForm {
	return ResetPasswordForm{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
}
