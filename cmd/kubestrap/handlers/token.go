package handlers

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/platform/kubeadm"
	"github.com/imamik/kubestrap/internal/provisioning"
)

// Token issues a fresh worker join credential on the control plane.
func Token(ctx context.Context, configPath, output string) error {
	if output != "text" && output != "yaml" {
		return fmt.Errorf("unknown output format %q, want text or yaml", output)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if cfg.ParsedRole() != provisioning.RoleControlPlane {
		return fmt.Errorf("join credentials are issued on a control plane, this config has role %q", cfg.Role)
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	timeouts := config.LoadTimeouts()
	kube := kubeadm.New(runner)
	kube.TokenRetries = timeouts.RetryMaxAttempts
	kube.TokenRetryDelay = timeouts.RetryInitialDelay
	exchange := cluster.NewExchange(kube, kube)

	issueCtx, cancel := context.WithTimeout(ctx, timeouts.TokenIssue)
	defer cancel()

	cred, err := exchange.Issue(issueCtx)
	if err != nil {
		if errors.Is(err, cluster.ErrNotBootstrapped) {
			return fmt.Errorf("%w: run 'kubestrap provision' on this machine first", err)
		}
		return err
	}

	if output == "yaml" {
		out, err := yaml.Marshal(cred)
		if err != nil {
			return fmt.Errorf("failed to render credential: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	printCredential(cred)
	return nil
}

func printCredential(cred cluster.JoinCredential) {
	fmt.Printf("token:        %s\n", cred.Token)
	fmt.Printf("endpoint:     %s\n", cred.Endpoint)
	fmt.Printf("ca-cert-hash: %s\n", cred.CACertHash)
	fmt.Printf("\nOn the worker:\n")
	fmt.Printf("  kubestrap provision --join-token %s --ca-cert-hash %s\n",
		cred.Token, cred.CACertHash)
}
