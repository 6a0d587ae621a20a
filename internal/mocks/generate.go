// Package mocks provides mock implementations for testing the parent portal.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	backend := mocks.NewMockAuthBackend(ctrl)
//	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

// Generate mocks for the auth ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_ports_mock.go github.com/kitahub/parent-portal/internal/ports AuthBackend,RedirectStore
