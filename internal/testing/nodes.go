package testing

import (
	"context"
	"sync"

	"github.com/imamik/kubestrap/internal/cluster"
)

// FakeNodes serves canned cluster membership snapshots in sequence.
// The last snapshot repeats once the sequence is exhausted.
type FakeNodes struct {
	mu    sync.Mutex
	views []cluster.View
	errs  []error
	calls int
}

// NewFakeNodes creates a membership source returning the given views in order.
func NewFakeNodes(views ...cluster.View) *FakeNodes {
	return &FakeNodes{views: views}
}

// FailWith makes the source return err for the next len(errs) calls before
// serving views.
func (f *FakeNodes) FailWith(errs ...error) *FakeNodes {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = errs
	return f
}

// GetNodes implements cluster.NodesGetter.
func (f *FakeNodes) GetNodes(_ context.Context) (cluster.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.calls
	f.calls++

	if call < len(f.errs) {
		return cluster.View{}, f.errs[call]
	}
	call -= len(f.errs)

	if len(f.views) == 0 {
		return cluster.View{}, nil
	}
	if call >= len(f.views) {
		call = len(f.views) - 1
	}
	return f.views[call], nil
}

// Calls returns how many snapshots were requested.
func (f *FakeNodes) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ReadyView builds a snapshot where the named members are Ready.
func ReadyView(names ...string) cluster.View {
	view := cluster.View{}
	for _, name := range names {
		view.Members = append(view.Members, cluster.Member{Name: name, Ready: true})
	}
	return view
}

// NotReadyView builds a snapshot where the named members exist but are not Ready.
func NotReadyView(names ...string) cluster.View {
	view := cluster.View{}
	for _, name := range names {
		view.Members = append(view.Members, cluster.Member{Name: name})
	}
	return view
}
