// Package cni installs the pod network plugin on a freshly initialized
// control plane. A cluster without a network plugin reports its own node
// NotReady, so this is the gate between bootstrap and verification.
//
// Two delivery mechanisms are supported: a flat YAML manifest fetched by
// URL (flannel style) and a Helm chart (Cilium style).
package cni

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HelmChart describes a chart-packaged network plugin.
type HelmChart struct {
	RepoURL   string                 `mapstructure:"repo_url" yaml:"repo_url"`
	Chart     string                 `mapstructure:"chart" yaml:"chart"`
	Version   string                 `mapstructure:"version" yaml:"version"`
	Namespace string                 `mapstructure:"namespace" yaml:"namespace"`
	Release   string                 `mapstructure:"release" yaml:"release"`
	Values    map[string]interface{} `mapstructure:"values" yaml:"values"`
}

// Config selects and parameterizes the network plugin.
type Config struct {
	// ManifestURL points at a flat YAML manifest. Mutually exclusive
	// with Helm.
	ManifestURL string `mapstructure:"manifest_url" yaml:"manifest_url"`

	// Helm describes a chart-based plugin.
	Helm *HelmChart `mapstructure:"helm" yaml:"helm"`

	// PodNamePrefix identifies the plugin's pods in kube-system,
	// e.g. "kube-flannel" or "cilium". Used as the installed probe.
	PodNamePrefix string `mapstructure:"pod_name_prefix" yaml:"pod_name_prefix"`
}

// Validate checks that exactly one delivery mechanism is configured.
func (c Config) Validate() error {
	if c.ManifestURL == "" && c.Helm == nil {
		return fmt.Errorf("network plugin requires either manifest_url or helm")
	}
	if c.ManifestURL != "" && c.Helm != nil {
		return fmt.Errorf("network plugin manifest_url and helm are mutually exclusive")
	}
	if c.PodNamePrefix == "" {
		return fmt.Errorf("network plugin pod_name_prefix is required")
	}
	return nil
}

// ManifestApplier applies manifests and inspects system pods.
// Implemented by the k8s client.
type ManifestApplier interface {
	Apply(ctx context.Context, manifest string) error
	GetSystemPods(ctx context.Context) (map[string]string, error)
}

// ChartInstaller installs Helm charts. Implemented by the k8s Helm client.
type ChartInstaller interface {
	InstallOrUpgrade(kubeconfig []byte, namespace, releaseName, repoURL, chartName, version string, values map[string]interface{}) error
}

// Installer applies the configured network plugin to a cluster.
type Installer struct {
	cfg        Config
	applier    ManifestApplier
	charts     ChartInstaller
	kubeconfig []byte
	httpClient *http.Client
}

// NewInstaller creates a network plugin installer. kubeconfig is only used
// for chart installs; charts may be nil when cfg.Helm is nil.
func NewInstaller(cfg Config, applier ManifestApplier, charts ChartInstaller, kubeconfig []byte) *Installer {
	return &Installer{
		cfg:        cfg,
		applier:    applier,
		charts:     charts,
		kubeconfig: kubeconfig,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Installed reports whether the plugin's pods exist in kube-system.
// The probe is by pod name prefix; pod health is the verifier's concern.
func (i *Installer) Installed(ctx context.Context) (bool, error) {
	pods, err := i.applier.GetSystemPods(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list system pods: %w", err)
	}

	for name := range pods {
		if strings.HasPrefix(name, i.cfg.PodNamePrefix) {
			return true, nil
		}
	}

	return false, nil
}

// Install applies the network plugin.
func (i *Installer) Install(ctx context.Context) error {
	if i.cfg.Helm != nil {
		return i.installChart()
	}
	return i.applyManifest(ctx)
}

func (i *Installer) installChart() error {
	chart := i.cfg.Helm

	namespace := chart.Namespace
	if namespace == "" {
		namespace = "kube-system"
	}
	release := chart.Release
	if release == "" {
		release = chart.Chart
	}

	if err := i.charts.InstallOrUpgrade(i.kubeconfig, namespace, release,
		chart.RepoURL, chart.Chart, chart.Version, chart.Values); err != nil {
		return fmt.Errorf("failed to install network plugin chart %s: %w", chart.Chart, err)
	}

	return nil
}

func (i *Installer) applyManifest(ctx context.Context) error {
	manifest, err := i.fetchManifest(ctx, i.cfg.ManifestURL)
	if err != nil {
		return err
	}

	if err := i.applier.Apply(ctx, manifest); err != nil {
		return fmt.Errorf("failed to apply network plugin manifest: %w", err)
	}

	return nil
}

func (i *Installer) fetchManifest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build manifest request: %w", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch network plugin manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("manifest fetch returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest body: %w", err)
	}

	return string(body), nil
}
