package kubeadm

import (
	"fmt"
	"strings"

	"github.com/imamik/kubestrap/internal/cluster"
)

// ParseJoinCommand extracts a join credential from the output of
// `kubeadm token create --print-join-command`, which looks like:
//
//	kubeadm join 10.0.0.1:6443 --token abcdef.0123456789abcdef \
//	    --discovery-token-ca-cert-hash sha256:1234...
//
// The output may span multiple lines and carry warnings before the
// command itself; only the `kubeadm join` line is parsed.
func ParseJoinCommand(output string) (cluster.JoinCredential, error) {
	var joinLine string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), "\\")
		if strings.HasPrefix(line, "kubeadm join") {
			joinLine = line
		} else if joinLine != "" && strings.HasPrefix(line, "--") {
			// Continuation line of a wrapped join command.
			joinLine += " " + line
		}
	}

	if joinLine == "" {
		return cluster.JoinCredential{}, fmt.Errorf("no kubeadm join command in output: %q", strings.TrimSpace(output))
	}

	fields := strings.Fields(joinLine)

	var cred cluster.JoinCredential
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "join":
			if i+1 < len(fields) {
				cred.Endpoint = fields[i+1]
			}
		case "--token":
			if i+1 < len(fields) {
				cred.Token = fields[i+1]
			}
		case "--discovery-token-ca-cert-hash":
			if i+1 < len(fields) {
				cred.CACertHash = fields[i+1]
			}
		}
	}

	if err := cred.Validate(); err != nil {
		return cluster.JoinCredential{}, fmt.Errorf("join command %q yields invalid credential: %w", joinLine, err)
	}

	return cred, nil
}
