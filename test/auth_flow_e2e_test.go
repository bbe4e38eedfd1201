//go:build e2e

package test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userEmail(want string) Check {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		user, ok := body["user"].(map[string]any)
		require.True(t, ok, "user object missing")
		assert.Equal(t, want, user["email"])
		assert.NotEmpty(t, user["id"])
	}
}

func TestAuthFlowE2E(t *testing.T) {
	env := SetupTestEnvironment(t)
	const email, password = "bob@example.com", "Password123"

	signedUp := Step{
		Name:   "sign_up",
		Method: http.MethodPost,
		Path:   signUpEndpoint,
		Body:   credentials(email, password),
		Status: http.StatusCreated,
		Checks: []Check{hasFields("user", "token"), userEmail(email)},
	}.Run(t, env.BaseURL)
	require.NotEmpty(t, stringField(t, signedUp, "token"))

	signedIn := Step{
		Name:   "sign_in_mixed_case",
		Method: http.MethodPost,
		Path:   signInEndpoint,
		Body:   credentials("Bob@Example.COM", password),
		Status: http.StatusOK,
		Checks: []Check{hasFields("user", "token"), userEmail(email)},
	}.Run(t, env.BaseURL)
	token := stringField(t, signedIn, "token")

	Step{
		Name:   "me",
		Method: http.MethodGet,
		Path:   meEndpoint,
		Token:  token,
		Status: http.StatusOK,
		Checks: []Check{
			hasFields("uid", "email"),
			func(t *testing.T, body map[string]any) {
				assert.Equal(t, email, body["email"])
			},
		},
	}.Run(t, env.BaseURL)
}

func TestAuthRejectionsE2E(t *testing.T) {
	env := SetupTestEnvironment(t)
	creds := credentials("carol@example.com", "Password123")

	results := runSteps(t, env.BaseURL,
		Step{
			Name:   "sign_up",
			Method: http.MethodPost,
			Path:   signUpEndpoint,
			Body:   creds,
			Status: http.StatusCreated,
			Checks: []Check{hasFields("token", "user")},
		},
		Step{
			Name:   "duplicate_sign_up",
			Method: http.MethodPost,
			Path:   signUpEndpoint,
			Body:   creds,
			Status: http.StatusBadRequest,
			Checks: []Check{errorContains("registration failed")},
		},
		Step{
			Name:   "weak_password",
			Method: http.MethodPost,
			Path:   signUpEndpoint,
			Body:   credentials("dave@example.com", "short"),
			Status: http.StatusBadRequest,
		},
		Step{
			Name:   "wrong_password",
			Method: http.MethodPost,
			Path:   signInEndpoint,
			Body:   credentials(creds["email"], "WrongPass123"),
			Status: http.StatusUnauthorized,
			Checks: []Check{errorContains("invalid credentials")},
		},
		Step{
			Name:   "notes_without_token",
			Method: http.MethodGet,
			Path:   notesEndpoint,
			Status: http.StatusUnauthorized,
		},
		Step{
			Name:   "notes_with_garbage_token",
			Method: http.MethodGet,
			Path:   notesEndpoint,
			Token:  "not-a-jwt",
			Status: http.StatusUnauthorized,
		},
	)

	Step{
		Name:   "sign_out",
		Method: http.MethodPost,
		Path:   signOutEndpoint,
		Token:  stringField(t, results[0], "token"),
		Status: http.StatusOK,
		Checks: []Check{messageIs("Successfully signed out")},
	}.Run(t, env.BaseURL)
}
