// Package mocks holds generated gomock doubles for interfaces consumed
// across package boundaries.
//
// Regenerate after interface changes with:
//
//	go generate ./internal/mocks
package mocks

// Mock for the HTTP surface's view of the identity layer.
// Creates MockIdentity covering Login, Register, Logout, ResetPassword,
// UpdateProfile, BeginRedirectLogin, CompleteRedirectLogin, State.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_mock.go github.com/quartzlabs/crm-ui-api/internal/http Identity
