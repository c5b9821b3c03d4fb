package core

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{-1234567, "-1,234,567"},
		{int64(1000000), "1,000,000"},
		{uint(12345), "12,345"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumberTemplate(tt.in))
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "Wirel…", TruncateText("Wireless headphones", 6))
	assert.Equal(t, "ü", TruncateText("über", 1))
	assert.Equal(t, "keep", TruncateText("keep", "x"))
}

func TestFieldError(t *testing.T) {
	errs := map[string]string{"email": "Please enter a valid email address"}
	assert.Equal(t, "Please enter a valid email address", FieldError(errs, "email"))
	assert.Empty(t, FieldError(errs, "name"))
	assert.Empty(t, FieldError(nil, "email"))
}

func TestRenderSection(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{
		Template:           &tmpl,
		ContentTemplateFor: func(page string) string { return page + "-content" },
	})
	tmpl = template.Must(template.New("root").Funcs(funcs).Parse(
		`{{define "home-content"}}<p>{{.}}</p>{{end}}{{define "page"}}{{renderSection "home" .}}{{end}}`,
	))

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "page", "<b>hi</b>"))
	assert.Equal(t, "<p>&lt;b&gt;hi&lt;/b&gt;</p>", buf.String())
}
