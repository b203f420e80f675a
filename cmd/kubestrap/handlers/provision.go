package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/k8s"
	"github.com/imamik/kubestrap/internal/platform/kubeadm"
	"github.com/imamik/kubestrap/internal/platform/objectstore"
	"github.com/imamik/kubestrap/internal/provisioning"
	"github.com/imamik/kubestrap/internal/provisioning/catalog"
	"github.com/imamik/kubestrap/internal/state"
	"github.com/imamik/kubestrap/internal/ui/tui"
)

// ProvisionOptions carries the provision command's flags.
type ProvisionOptions struct {
	JoinToken   string
	CACertHash  string
	Endpoint    string
	Plain       bool
	SkipVerify  bool
	MetricsAddr string
}

// Provision runs the machine's phase catalog and, unless skipped, waits
// for the machine to report Ready in the cluster.
func Provision(ctx context.Context, configPath string, opts ProvisionOptions) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	kube := kubeadm.New(runner)
	role := cfg.ParsedRole()

	catalogOpts := catalog.Options{
		RepositoryURL:        cfg.Packages.RepositoryURL,
		KeyURL:               cfg.Packages.KeyURL,
		PodNetworkCIDR:       cfg.Kubernetes.PodNetworkCIDR,
		ControlPlaneEndpoint: cfg.Kubernetes.ControlPlaneEndpoint,
	}
	if role == provisioning.RoleWorker {
		cred, err := workerCredential(cfg, opts)
		if err != nil {
			return err
		}
		catalogOpts.JoinCredential = cred
	}

	plan := catalog.ForRole(role, buildDeps(cfg, runner, kube), catalogOpts)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		if err := serveMetrics(opts.MetricsAddr); err != nil {
			return err
		}
	}

	interactive := !opts.Plain && isatty.IsTerminal(os.Stdout.Fd())

	var result *provisioning.RunResult
	if interactive {
		result, err = runWithTUI(ctx, cfg, store, plan, timeouts.PhaseApply)
	} else {
		orch := provisioning.NewOrchestrator(store, provisioning.NewConsoleObserver(), cfg.ClusterName)
		orch.PhaseTimeout = timeouts.PhaseApply
		result, err = orch.Run(ctx, cfg.MachineID, plan)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Provisioning complete: %d applied, %d skipped, %d reapplied\n",
		len(result.Applied), len(result.Skipped), len(result.Reapplied))

	if !opts.SkipVerify {
		if err := awaitConvergence(ctx, cfg, store, kube, role, timeouts); err != nil {
			return err
		}
	}

	if role == provisioning.RoleControlPlane && cfg.ObjectStore != nil {
		if err := exportKubeconfig(ctx, cfg, kube); err != nil {
			return err
		}
	}

	return nil
}

// workerCredential assembles the join credential from flags, falling
// back to an interactive prompt on a terminal. A missing credential is
// not an error here; the join phase reports it as the blocked step.
func workerCredential(cfg *config.Config, opts ProvisionOptions) (*cluster.JoinCredential, error) {
	token := strings.TrimSpace(opts.JoinToken)
	hash := strings.TrimSpace(opts.CACertHash)

	if (token == "" || hash == "") && isatty.IsTerminal(os.Stdin.Fd()) {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Join token").
				Description("Issued on the control plane with 'kubestrap token'").
				Value(&token),
			huh.NewInput().
				Title("CA certificate hash").
				Placeholder("sha256:...").
				Value(&hash),
		))
		if err := form.Run(); err != nil {
			return nil, fmt.Errorf("credential prompt aborted: %w", err)
		}
		token = strings.TrimSpace(token)
		hash = strings.TrimSpace(hash)
	}

	if token == "" && hash == "" {
		return nil, nil
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = cfg.Kubernetes.ControlPlaneEndpoint
	}

	return &cluster.JoinCredential{
		Token:      token,
		Endpoint:   endpoint,
		CACertHash: hash,
	}, nil
}

// runWithTUI executes the plan while a Bubble Tea program renders
// progress. The orchestrator runs in a goroutine and feeds the program
// through a Notifier. Quitting the UI mid-run aborts the run: the
// orchestrator's context is cancelled and its result is awaited before
// returning, so the machine lock is released and the outcome reported.
func runWithTUI(ctx context.Context, cfg *config.Config, store *state.Store, plan provisioning.Plan, phaseTimeout time.Duration, teaOpts ...tea.ProgramOption) (*provisioning.RunResult, error) {
	model := tui.NewModel(cfg.ClusterName, cfg.MachineID, plan.Role.String(), plan.PhaseIDs())
	program := tea.NewProgram(model, teaOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		result *provisioning.RunResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		orch := provisioning.NewOrchestrator(store, tui.NewNotifier(program.Send), cfg.ClusterName)
		orch.PhaseTimeout = phaseTimeout
		result, runErr = orch.Run(runCtx, cfg.MachineID, plan)
		if runErr != nil {
			program.Send(tui.ErrMsg{Err: runErr})
			return
		}
		program.Send(tui.DoneMsg{})
	}()

	_, uiErr := program.Run()
	cancel()
	<-done

	if uiErr != nil {
		return result, fmt.Errorf("display error: %w", uiErr)
	}
	return result, runErr
}

// awaitConvergence waits for this machine to report Ready and records
// the Verified status when it does.
func awaitConvergence(ctx context.Context, cfg *config.Config, store *state.Store, kube *kubeadm.Kubeadm, role provisioning.Role, timeouts *config.Timeouts) error {
	kubeconfig, err := readKubeconfig(ctx, role, kube)
	if err != nil {
		return err
	}
	client, err := k8s.NewClientFromBytes(kubeconfig)
	if err != nil {
		return err
	}

	fmt.Printf("Waiting up to %v for %s to report Ready...\n", timeouts.Converge, cfg.MachineID)

	verifier := cluster.NewVerifier(client)
	verdict := verifier.AwaitReady(ctx, []string{cfg.MachineID}, timeouts.Converge, timeouts.PollInterval)
	if !verdict.Converged() {
		return fmt.Errorf("machine %s did not converge: not ready %v",
			cfg.MachineID, verdict.NotReady)
	}

	orch := provisioning.NewOrchestrator(store, provisioning.NewConsoleObserver(), cfg.ClusterName)
	if err := orch.MarkVerified(cfg.MachineID); err != nil {
		return err
	}

	fmt.Printf("Machine %s is Ready.\n", cfg.MachineID)
	return nil
}

// exportKubeconfig uploads the admin kubeconfig to the configured
// object store.
func exportKubeconfig(ctx context.Context, cfg *config.Config, kube *kubeadm.Kubeadm) error {
	kubeconfig, err := kube.ReadAdminConf(ctx)
	if err != nil {
		return err
	}

	store, err := objectstore.NewClient(
		cfg.ObjectStore.Endpoint,
		cfg.ObjectStore.Region,
		cfg.ObjectStore.Bucket,
		cfg.ObjectStore.AccessKey,
		cfg.ObjectStore.SecretKey,
	)
	if err != nil {
		return err
	}

	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}
	key, err := store.UploadKubeconfig(ctx, cfg.ClusterName, kubeconfig)
	if err != nil {
		return err
	}

	fmt.Printf("Admin kubeconfig exported to %s/%s\n", cfg.ObjectStore.Bucket, key)
	return nil
}
