// Package k8s provides a Kubernetes client wrapper for cluster membership
// snapshots, system pod inspection, and network plugin manifest application.
package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/kubestrap/internal/cluster"
)

// Client wraps Kubernetes API operations used during bootstrap verification.
type Client struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
	mapper    meta.RESTMapper
}

// NewClientFromBytes creates a new Kubernetes client from kubeconfig bytes.
// On a control plane this is the admin kubeconfig; on a worker the kubelet
// kubeconfig suffices for reading node status.
func NewClientFromBytes(kubeconfigData []byte) (*Client, error) {
	config, err := clientcmd.RESTConfigFromKubeConfig(kubeconfigData)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return &Client{
		clientset: clientset,
		dynamic:   dynamicClient,
		mapper:    mapper,
	}, nil
}

// NewClientForTesting wires a client from pre-built interfaces.
func NewClientForTesting(clientset kubernetes.Interface, dyn dynamic.Interface, mapper meta.RESTMapper) *Client {
	return &Client{clientset: clientset, dynamic: dyn, mapper: mapper}
}

// GetNodes returns the current cluster membership snapshot.
func (c *Client) GetNodes(ctx context.Context) (cluster.View, error) {
	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return cluster.View{}, fmt.Errorf("failed to list nodes: %w", err)
	}

	view := cluster.View{}
	for _, node := range nodeList.Items {
		view.Members = append(view.Members, cluster.Member{
			Name:  node.Name,
			Ready: isNodeReady(&node),
		})
	}

	return view, nil
}

// GetSystemPods returns the pods in kube-system with their phase.
func (c *Client) GetSystemPods(ctx context.Context) (map[string]string, error) {
	podList, err := c.clientset.CoreV1().Pods("kube-system").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list system pods: %w", err)
	}

	pods := make(map[string]string, len(podList.Items))
	for _, pod := range podList.Items {
		pods[pod.Name] = string(pod.Status.Phase)
	}

	return pods, nil
}

// Apply applies a multi-document YAML manifest to the cluster.
// Existing resources are updated, making the operation idempotent.
func (c *Client) Apply(ctx context.Context, manifest string) error {
	decoder := yaml.NewYAMLOrJSONDecoder(strings.NewReader(manifest), 4096)

	for {
		var obj unstructured.Unstructured
		err := decoder.Decode(&obj)
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return fmt.Errorf("failed to decode manifest: %w", err)
		}

		// Skip empty objects
		if len(obj.Object) == 0 {
			continue
		}

		if err := c.applyObject(ctx, &obj); err != nil {
			return err
		}
	}

	return nil
}

// applyObject creates the resource, falling back to update when it exists.
// The resource and its scope come from the server's discovery data, so
// irregular plurals and CRD kinds resolve correctly.
func (c *Client) applyObject(ctx context.Context, obj *unstructured.Unstructured) error {
	gvk := obj.GroupVersionKind()
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("failed to resolve resource for %s: %w", gvk.Kind, err)
	}

	var iface dynamic.ResourceInterface = c.dynamic.Resource(mapping.Resource)
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		namespace := obj.GetNamespace()
		if namespace == "" {
			namespace = "default"
		}
		iface = c.dynamic.Resource(mapping.Resource).Namespace(namespace)
	}

	if _, err := iface.Create(ctx, obj, metav1.CreateOptions{}); err != nil {
		existing, getErr := iface.Get(ctx, obj.GetName(), metav1.GetOptions{})
		if getErr != nil {
			return fmt.Errorf("failed to apply resource %s/%s: %w", obj.GetKind(), obj.GetName(), err)
		}

		obj.SetResourceVersion(existing.GetResourceVersion())
		if _, err := iface.Update(ctx, obj, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("failed to update resource %s/%s: %w", obj.GetKind(), obj.GetName(), err)
		}
	}

	return nil
}

// isNodeReady checks the NodeReady condition.
func isNodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
