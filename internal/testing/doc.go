// Package testing provides shared test utilities for unit tests.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - FakeRunner: scripted command runner for host collaborator tests
//   - FakeNodes: canned cluster membership snapshots for verifier tests
//
// Usage:
//
//	runner := testing.NewFakeRunner()
//	runner.Respond("swapon", "", nil)
//	host := sys.NewHost(runner)
package testing
