package agentrunner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vg34100/agent-board/internal/domain"
	"gopkg.in/yaml.v3"
)

// CatalogFileName is the optional YAML file, read from the data directory,
// that can extend a profile's command candidates (e.g. a custom wrapper
// script, or a non-standard install location) without a code change.
const CatalogFileName = "agent_catalog.yaml"

// catalogFile is the on-disk shape of agent_catalog.yaml.
type catalogFile struct {
	Profiles map[string]catalogProfile `yaml:"profiles"`
}

type catalogProfile struct {
	Candidates []catalogCandidate `yaml:"candidates"`
}

type catalogCandidate struct {
	Program string   `yaml:"program"`
	Args    []string `yaml:"args"`
	Shell   string   `yaml:"shell"`
}

// LoadCatalog reads dataDir/agent_catalog.yaml, if present, and prepends its
// candidates ahead of the built-in ones for the matching profile — an
// operator-supplied wrapper is tried before falling back to the defaults.
// A missing file is not an error; the built-in profiles are used as-is.
func LoadCatalog(dataDir string, base map[domain.Profile]Profile) (map[domain.Profile]Profile, error) {
	path := filepath.Join(dataDir, CatalogFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	merged := make(map[domain.Profile]Profile, len(base))
	for k, v := range base {
		merged[k] = v
	}

	for name, cp := range cf.Profiles {
		profile, ok := merged[domain.Profile(name)]
		if !ok {
			continue
		}
		var extra []CommandSpec
		for _, c := range cp.Candidates {
			extra = append(extra, CommandSpec{Program: c.Program, Args: c.Args, Shell: c.Shell})
		}
		profile.Candidates = append(extra, profile.Candidates...)
		merged[domain.Profile(name)] = profile
	}
	return merged, nil
}
