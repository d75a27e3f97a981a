// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing trace events, datasets and fake
// engines. These helpers are intentionally minimal and not intended for
// production usage.
package testutil
