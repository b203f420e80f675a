package cluster

import (
	"context"
	"sort"
	"time"
)

// VerifyResult is the outcome of one bounded convergence wait.
// A timeout is a reportable result, not an error: the caller decides
// whether to keep waiting or abort.
type VerifyResult struct {
	// Ready holds the expected members reporting Ready.
	Ready []string
	// NotReady holds the expected members missing or not Ready.
	NotReady []string
	// TimedOut is true when the wait ended (deadline or operator abort)
	// before every expected member reported Ready.
	TimedOut bool
}

// Converged reports whether every expected member was Ready.
func (r VerifyResult) Converged() bool {
	return !r.TimedOut && len(r.NotReady) == 0
}

// Verifier polls cluster membership until expected members report Ready.
type Verifier struct {
	nodes NodesGetter
}

// NewVerifier creates a verifier over the given membership source.
func NewVerifier(nodes NodesGetter) *Verifier {
	return &Verifier{nodes: nodes}
}

// AwaitReady polls the cluster view every pollInterval until every expected
// member reports Ready or timeout elapses. The context cancels the wait
// early; the partial result collected so far is returned in both cases.
//
// A zero timeout with a non-empty expected set returns TimedOut immediately
// without polling.
func (v *Verifier) AwaitReady(ctx context.Context, expected []string, timeout, pollInterval time.Duration) VerifyResult {
	if len(expected) == 0 {
		return VerifyResult{}
	}

	if timeout <= 0 {
		return VerifyResult{NotReady: sortedCopy(expected), TimedOut: true}
	}

	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	// Track the latest observation so an abort still reports progress.
	last := VerifyResult{NotReady: sortedCopy(expected)}

	for {
		view, err := v.nodes.GetNodes(ctx)
		if err == nil {
			last = classify(view, expected)
			if len(last.NotReady) == 0 {
				return last
			}
		}
		// A failed snapshot fetch is transient here: the API server may
		// still be coming up. The bounded deadline caps the retries.

		select {
		case <-ctx.Done():
			last.TimedOut = true
			return last
		case <-deadline.C:
			last.TimedOut = true
			return last
		case <-time.After(pollInterval):
		}
	}
}

// classify splits expected members into ready and not-ready sets.
func classify(view View, expected []string) VerifyResult {
	var result VerifyResult
	for _, name := range expected {
		if view.Ready(name) {
			result.Ready = append(result.Ready, name)
		} else {
			result.NotReady = append(result.NotReady, name)
		}
	}
	sort.Strings(result.Ready)
	sort.Strings(result.NotReady)
	return result
}

func sortedCopy(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
