package main

import (
	"fmt"
	"os/exec"

	"github.com/Vg34100/agent-board/internal/agentrunner"
	"github.com/spf13/cobra"
)

// newDoctorCommand resolves both agent profiles against PATH and reports
// which command (if any) each would invoke, without starting a server.
func newDoctorCommand(resolveDataDir func() (string, error), debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report which agent CLI command each profile would resolve to",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := resolveDataDir()
			if err != nil {
				return fmt.Errorf("resolve data directory: %w", err)
			}

			profiles := agentrunner.BuiltinProfiles()
			if loaded, err := agentrunner.LoadCatalog(dataDir, profiles); err == nil {
				profiles = loaded
			}

			out := cmd.OutOrStdout()
			for name, profile := range profiles {
				fmt.Fprintf(out, "%s (%s):\n", name, profile.Dialect)
				resolved := false
				for _, candidate := range profile.Candidates {
					lookup := candidate.Program
					if candidate.Shell != "" {
						lookup = candidate.Shell
					}
					if path, err := exec.LookPath(lookup); err == nil {
						fmt.Fprintf(out, "  resolved: %s -> %s\n", lookup, path)
						resolved = true
						break
					}
					fmt.Fprintf(out, "  not found: %s\n", lookup)
				}
				if !resolved {
					fmt.Fprintf(out, "  no candidate resolved for %s\n", name)
				}
			}
			return nil
		},
	}
}
