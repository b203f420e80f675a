// Package retry provides exponential backoff retry logic for transient failures.
//
// The [WithExponentialBackoff] function retries an operation with configurable
// max attempts, initial delay, and maximum delay. It is used for SSH connection
// establishment to freshly booted machines and for kubeadm token issuance,
// both of which can fail transiently while the host or API server settles.
package retry
