// Package deps reports the availability of external tools snapsort can use.
// Everything here is optional: the organizer degrades to in-process parsers
// when a probe binary is missing, so checks exist for operator visibility,
// not gating.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"snapsort/internal/config"
)

// Requirement defines an external tool snapsort can take advantage of.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a tool.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools for the given configuration.
func Requirements(cfg *config.Config) []Requirement {
	binary := "ffprobe"
	if cfg != nil && strings.TrimSpace(cfg.Probe.FFprobeBinary) != "" {
		binary = cfg.Probe.FFprobeBinary
	}
	return []Requirement{
		{
			Name:        "ffprobe",
			Command:     binary,
			Description: "Fast creation-time probe for video containers",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}
