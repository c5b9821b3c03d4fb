// Package mocks provides mock implementations for testing the storefront services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	carts := mocks.NewMockCartClient(ctrl)
//	carts.EXPECT().GetUserCart(gomock.Any(), gomock.Any()).Return(cart, true, nil)
package mocks

// Generate mocks for the backend shop interfaces from internal/ports.
// This creates MockCatalogClient, MockCartClient and MockPaymentClient.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=shop_mock.go github.com/target/storefront-web/internal/ports CatalogClient,CartClient,PaymentClient

// Generate mock for Cache interface from internal/ports package.
// This creates MockCache with methods for all Cache interface methods:
// Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_mock.go github.com/target/storefront-web/internal/ports Cache
