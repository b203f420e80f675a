package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/imamik/kubestrap/internal/addons/cni"
	"github.com/imamik/kubestrap/internal/provisioning"
)

// Default values applied when the configuration file omits them.
const (
	DefaultStateDir          = "/var/lib/kubestrap"
	DefaultKubernetesVersion = "1.31"
	DefaultPodNetworkCIDR    = "10.244.0.0/16"
	DefaultSSHPort           = 22
	DefaultSSHUser           = "root"
)

// Config holds the full kubestrap configuration.
type Config struct {
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`

	// MachineID names the machine being provisioned. State files are
	// keyed by it, so it must stay stable across runs.
	MachineID string `mapstructure:"machine_id" yaml:"machine_id"`

	Role string `mapstructure:"role" yaml:"role"`

	// StateDir is where durable per-machine provisioning state lives.
	StateDir string `mapstructure:"state_dir" yaml:"state_dir"`

	Kubernetes KubernetesConfig `mapstructure:"kubernetes" yaml:"kubernetes"`
	Packages   PackagesConfig   `mapstructure:"packages" yaml:"packages"`
	CNI        cni.Config       `mapstructure:"cni" yaml:"cni"`

	// Target selects a remote machine over SSH. When absent, phases
	// run on the local machine.
	Target *TargetConfig `mapstructure:"target" yaml:"target"`

	// ObjectStore, when set, receives the admin kubeconfig after a
	// successful control-plane bootstrap.
	ObjectStore *ObjectStoreConfig `mapstructure:"object_store" yaml:"object_store"`
}

// KubernetesConfig holds cluster-level Kubernetes settings.
type KubernetesConfig struct {
	// Version is the minor release line, e.g. "1.31". It selects the
	// package repository and pins the installed packages.
	Version string `mapstructure:"version" yaml:"version"`

	PodNetworkCIDR string `mapstructure:"pod_network_cidr" yaml:"pod_network_cidr"`

	// ControlPlaneEndpoint is the host:port workers join through.
	// Required for workers; optional for a single control plane.
	ControlPlaneEndpoint string `mapstructure:"control_plane_endpoint" yaml:"control_plane_endpoint"`
}

// PackagesConfig holds the package repository settings.
type PackagesConfig struct {
	// RepositoryURL and KeyURL override the upstream Kubernetes apt
	// repository. Both derive from Kubernetes.Version when empty.
	RepositoryURL string `mapstructure:"repository_url" yaml:"repository_url"`
	KeyURL        string `mapstructure:"key_url" yaml:"key_url"`
}

// TargetConfig identifies a remote machine reachable over SSH.
type TargetConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	User           string `mapstructure:"user" yaml:"user"`
	PrivateKeyPath string `mapstructure:"private_key_path" yaml:"private_key_path"`
}

// ObjectStoreConfig holds S3-compatible storage settings for kubeconfig
// export.
type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// applyDefaults fills in zero values.
func (c *Config) applyDefaults() {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.Kubernetes.Version == "" {
		c.Kubernetes.Version = DefaultKubernetesVersion
	}
	if c.Kubernetes.PodNetworkCIDR == "" {
		c.Kubernetes.PodNetworkCIDR = DefaultPodNetworkCIDR
	}
	if c.Packages.RepositoryURL == "" {
		c.Packages.RepositoryURL = fmt.Sprintf(
			"https://pkgs.k8s.io/core:/stable:/v%s/deb/", c.Kubernetes.Version)
	}
	if c.Packages.KeyURL == "" {
		c.Packages.KeyURL = fmt.Sprintf(
			"https://pkgs.k8s.io/core:/stable:/v%s/deb/Release.key", c.Kubernetes.Version)
	}
	if c.Target != nil {
		if c.Target.Port == 0 {
			c.Target.Port = DefaultSSHPort
		}
		if c.Target.User == "" {
			c.Target.User = DefaultSSHUser
		}
	}
}

// Validate checks the configuration for completeness and consistency.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("cluster_name is required")
	}
	if c.MachineID == "" {
		return fmt.Errorf("machine_id is required")
	}

	role, err := provisioning.ParseRole(c.Role)
	if err != nil {
		return err
	}

	if _, _, err := net.ParseCIDR(c.Kubernetes.PodNetworkCIDR); err != nil {
		return fmt.Errorf("invalid pod_network_cidr %q: %w", c.Kubernetes.PodNetworkCIDR, err)
	}

	if role == provisioning.RoleWorker && c.Kubernetes.ControlPlaneEndpoint == "" {
		return fmt.Errorf("kubernetes.control_plane_endpoint is required for the worker role")
	}
	if c.Kubernetes.ControlPlaneEndpoint != "" {
		if _, _, err := net.SplitHostPort(c.Kubernetes.ControlPlaneEndpoint); err != nil {
			return fmt.Errorf("kubernetes.control_plane_endpoint must be host:port: %w", err)
		}
	}

	if role == provisioning.RoleControlPlane {
		if err := c.CNI.Validate(); err != nil {
			return err
		}
	}

	if c.Target != nil {
		if c.Target.Host == "" {
			return fmt.Errorf("target.host is required when target is set")
		}
		if c.Target.PrivateKeyPath == "" {
			return fmt.Errorf("target.private_key_path is required when target is set")
		}
	}

	if c.ObjectStore != nil {
		var missing []string
		if c.ObjectStore.Endpoint == "" {
			missing = append(missing, "endpoint")
		}
		if c.ObjectStore.Bucket == "" {
			missing = append(missing, "bucket")
		}
		if c.ObjectStore.AccessKey == "" {
			missing = append(missing, "access_key")
		}
		if c.ObjectStore.SecretKey == "" {
			missing = append(missing, "secret_key")
		}
		if len(missing) > 0 {
			return fmt.Errorf("object_store is missing: %s", strings.Join(missing, ", "))
		}
	}

	return nil
}

// ParsedRole returns the machine role. Call Validate first.
func (c *Config) ParsedRole() provisioning.Role {
	role, _ := provisioning.ParseRole(c.Role)
	return role
}
