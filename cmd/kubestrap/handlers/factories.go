package handlers

import (
	"github.com/imamik/kubestrap/internal/platform/containerd"
	"github.com/imamik/kubestrap/internal/platform/exec"
	"github.com/imamik/kubestrap/internal/platform/pkgmgr"
	"github.com/imamik/kubestrap/internal/platform/sys"
	"github.com/imamik/kubestrap/internal/provisioning/catalog"
)

// Collaborator factories, kept as vars so tests can substitute fakes.
var (
	newSysHost = func(runner exec.Runner) catalog.HostConfigurer {
		return sys.NewHost(runner)
	}

	newPackageManager = func(runner exec.Runner) catalog.PackageManager {
		return pkgmgr.NewApt(runner)
	}

	newRuntimeService = func(runner exec.Runner) catalog.RuntimeService {
		return containerd.NewService(runner, containerd.DefaultConfigPath)
	}
)
