package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupLike struct {
	Name     string `form:"name"     validate:"min=2,max=50"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"min=6,max=100"`
}

func (signupLike) Messages() map[string]string {
	return map[string]string{
		"name.min": "Name must be at least 2 characters",
		"name.max": "Name must be less than 50 characters",
		"email":    "Please enter a valid email address",
	}
}

type resetLike struct {
	Password        string `form:"password"        validate:"min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

func TestStruct_Valid(t *testing.T) {
	errs, err := New().Struct(signupLike{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestStruct_Overrides(t *testing.T) {
	tests := []struct {
		name string
		in   signupLike
		want map[string]string
	}{
		{
			name: "too short name and bad email",
			in:   signupLike{Name: "A", Email: "nope", Password: "secret1"},
			want: map[string]string{
				"name":  "Name must be at least 2 characters",
				"email": "Please enter a valid email address",
			},
		},
		{
			name: "empty email uses field-wide override",
			in:   signupLike{Name: "Ada", Password: "secret1"},
			want: map[string]string{"email": "Please enter a valid email address"},
		},
		{
			name: "default message without override",
			in:   signupLike{Name: "Ada", Email: "ada@example.com", Password: "123"},
			want: map[string]string{"password": "Password must be at least 6 characters."},
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.Struct(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, errs)
		})
	}
}

func TestStruct_NameCountsRunes(t *testing.T) {
	errs, err := New().Struct(signupLike{Name: "Zoë", Email: "z@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestStruct_EqField(t *testing.T) {
	errs, err := New().Struct(resetLike{Password: "secret1", ConfirmPassword: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"confirmPassword": "Confirm password must match Password."}, errs)
}

func TestStruct_NonStruct(t *testing.T) {
	_, err := New().Struct("not a struct")
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Confirm password", humanize("confirmPassword"))
	assert.Equal(t, "Email", humanize("email"))
	assert.Equal(t, "Cart id", humanize("cart_id"))
	assert.Empty(t, humanize(""))
}
