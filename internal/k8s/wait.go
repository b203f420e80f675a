package k8s

import (
	"context"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

// WaitForNodeReady waits for the named node to report the Ready condition.
func (c *Client) WaitForNodeReady(ctx context.Context, name string, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, 5*time.Second, timeout, true,
		func(ctx context.Context) (bool, error) {
			node, err := c.clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				return false, nil
			}
			return isNodeReady(node), nil
		})
}

// WaitForSystemPodsRunning waits until every pod matching the label selector
// in kube-system is Running. Used to confirm a network plugin rollout.
func (c *Client) WaitForSystemPodsRunning(ctx context.Context, labelSelector string, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, 5*time.Second, timeout, true,
		func(ctx context.Context) (bool, error) {
			podList, err := c.clientset.CoreV1().Pods("kube-system").List(ctx, metav1.ListOptions{
				LabelSelector: labelSelector,
			})
			if err != nil {
				return false, nil
			}

			if len(podList.Items) == 0 {
				return false, nil
			}

			for _, pod := range podList.Items {
				if pod.Status.Phase != "Running" {
					return false, nil
				}
			}

			return true, nil
		})
}
