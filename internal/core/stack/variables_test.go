package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteVariables(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		variables map[string]string
		want      string
	}{
		{
			name:      "simple substitution",
			value:     "${DB_HOST}",
			variables: map[string]string{"DB_HOST": "db"},
			want:      "db",
		},
		{
			name:      "missing variable kept as-is",
			value:     "${MISSING}",
			variables: map[string]string{},
			want:      "${MISSING}",
		},
		{
			name:      "default used when missing",
			value:     "${PORT:-8000}",
			variables: map[string]string{},
			want:      "8000",
		},
		{
			name:      "value wins over default",
			value:     "${PORT:-8000}",
			variables: map[string]string{"PORT": "9999"},
			want:      "9999",
		},
		{
			name:      "empty default",
			value:     "${OPTIONAL:-}",
			variables: map[string]string{},
			want:      "",
		},
		{
			name:      "multiple placeholders",
			value:     "postgres://${USER}:${PASS}@db:5432/${DB:-app_db}",
			variables: map[string]string{"USER": "user", "PASS": "pass"},
			want:      "postgres://user:pass@db:5432/app_db",
		},
		{
			name:      "no placeholders",
			value:     "sleep infinity",
			variables: map[string]string{"X": "y"},
			want:      "sleep infinity",
		},
		{
			name:      "nil variables",
			value:     "${TZ:-Europe/Moscow}",
			variables: nil,
			want:      "Europe/Moscow",
		},
		{
			name:      "dollar without braces untouched",
			value:     "$HOME",
			variables: map[string]string{"HOME": "/root"},
			want:      "$HOME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubstituteVariables(tt.value, tt.variables)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstituteEnvironment(t *testing.T) {
	env := map[string]string{
		"POSTGRES_USER": "${PG_USER:-user}",
		"POSTGRES_DB":   "app_db",
	}

	result := SubstituteEnvironment(env, map[string]string{"PG_USER": "admin"})

	assert.Equal(t, "admin", result["POSTGRES_USER"])
	assert.Equal(t, "app_db", result["POSTGRES_DB"])
	// Input map untouched
	assert.Equal(t, "${PG_USER:-user}", env["POSTGRES_USER"])
}

func TestSubstituteEnvironmentNil(t *testing.T) {
	assert.Nil(t, SubstituteEnvironment(nil, map[string]string{"A": "b"}))
}
