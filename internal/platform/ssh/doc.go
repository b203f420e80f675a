// Package ssh provides an SSH-backed command runner for provisioning
// remote machines from an operator workstation.
//
// It implements the exec.Runner interface so provisioning phases run
// unchanged against local and remote targets. The client supports
// key-based authentication with configurable retry logic, since a machine
// that just finished booting may not accept connections immediately.
package ssh
