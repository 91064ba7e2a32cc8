// Package testutil provides testing utilities for adago.
//
// This package is intended for use in tests only. It provides a seeded
// RNG and generators for synthetic two-domain datasets with a known
// class structure and a controllable domain shift.
package testutil
