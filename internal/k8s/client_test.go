package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
)

func makeNode(name string, ready bool) *corev1.Node {
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: status},
			},
		},
	}
}

func TestClient_GetNodes(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset(
		makeNode("cp-1", true),
		makeNode("worker-1", false),
	)

	client := NewClientForTesting(clientset, nil, nil)
	view, err := client.GetNodes(context.Background())

	require.NoError(t, err)
	require.Len(t, view.Members, 2)
	assert.True(t, view.Ready("cp-1"))
	assert.False(t, view.Ready("worker-1"))
}

func TestClient_GetSystemPods(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "coredns-abc", Namespace: "kube-system"},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	})

	client := NewClientForTesting(clientset, nil, nil)
	pods, err := client.GetSystemPods(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Running", pods["coredns-abc"])
}

func TestIsNodeReady(t *testing.T) {
	t.Parallel()

	assert.True(t, isNodeReady(makeNode("n", true)))
	assert.False(t, isNodeReady(makeNode("n", false)))
	assert.False(t, isNodeReady(&corev1.Node{}), "node without conditions is not ready")
}

var (
	daemonsetGVR   = schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "daemonsets"}
	clusterroleGVR = schema.GroupVersionResource{Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"}
	ingressGVR     = schema.GroupVersionResource{Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"}
)

// manifestMapper resolves the kinds the apply tests use, the way a
// discovery-backed mapper would on a live cluster.
func manifestMapper() meta.RESTMapper {
	mapper := meta.NewDefaultRESTMapper(nil)
	mapper.AddSpecific(
		schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "DaemonSet"},
		daemonsetGVR,
		schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "daemonset"},
		meta.RESTScopeNamespace,
	)
	mapper.AddSpecific(
		schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "ClusterRole"},
		clusterroleGVR,
		schema.GroupVersionResource{Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterrole"},
		meta.RESTScopeRoot,
	)
	mapper.AddSpecific(
		schema.GroupVersionKind{Group: "networking.k8s.io", Version: "v1", Kind: "Ingress"},
		ingressGVR,
		schema.GroupVersionResource{Group: "networking.k8s.io", Version: "v1", Resource: "ingress"},
		meta.RESTScopeNamespace,
	)
	return mapper
}

const applyManifest = `apiVersion: apps/v1
kind: DaemonSet
metadata:
  name: flannel
---
apiVersion: rbac.authorization.k8s.io/v1
kind: ClusterRole
metadata:
  name: flannel
---
apiVersion: networking.k8s.io/v1
kind: Ingress
metadata:
  name: gateway
  namespace: kube-system
`

func TestClient_Apply(t *testing.T) {
	t.Parallel()

	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			daemonsetGVR:   "DaemonSetList",
			clusterroleGVR: "ClusterRoleList",
			ingressGVR:     "IngressList",
		})
	client := NewClientForTesting(nil, dyn, manifestMapper())
	ctx := context.Background()

	require.NoError(t, client.Apply(ctx, applyManifest))

	// A namespaced object without a namespace lands in default.
	_, err := dyn.Resource(daemonsetGVR).Namespace("default").Get(ctx, "flannel", metav1.GetOptions{})
	require.NoError(t, err)

	// Cluster-scoped objects never get a namespace.
	_, err = dyn.Resource(clusterroleGVR).Get(ctx, "flannel", metav1.GetOptions{})
	require.NoError(t, err)

	// Irregular plurals resolve through the mapper, not string surgery.
	_, err = dyn.Resource(ingressGVR).Namespace("kube-system").Get(ctx, "gateway", metav1.GetOptions{})
	require.NoError(t, err)

	// A second apply updates in place.
	require.NoError(t, client.Apply(ctx, applyManifest))
}

func TestClient_Apply_UnknownKind(t *testing.T) {
	t.Parallel()

	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{daemonsetGVR: "DaemonSetList"})
	client := NewClientForTesting(nil, dyn, manifestMapper())

	err := client.Apply(context.Background(), "apiVersion: v1\nkind: Widget\nmetadata:\n  name: w\n")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Widget")
}

func TestNewClientFromBytes_InvalidKubeconfig(t *testing.T) {
	t.Parallel()
	_, err := NewClientFromBytes([]byte("not a kubeconfig"))
	require.Error(t, err)
}
