// Package health provides liveness, readiness and version endpoints.
//
//   - /health: the process is running
//   - /ready: every registered check passes (503 otherwise)
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("ruleset", store.Ready)
//	health.Register(mux, checker, health.NewVersionInfo(version, commit, buildTime))
//
// Readiness checks run concurrently, each bounded by the checker timeout.
package health
