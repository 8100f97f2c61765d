package conf

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devricklin/privacy-guard/configs"
	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// SitesConfig contains the site table and the scorer prompt loaded from YAML
type SitesConfig struct {
	Sites       []domain.Site `yaml:"sites"`
	LabelPrompt string        `yaml:"label_prompt"`
}

// LoadSitesConfig loads the site table from path, or the embedded table when path is empty
func LoadSitesConfig(path string) (*SitesConfig, error) {
	data := configs.Sites
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return ParseSitesConfig(data)
}

// ParseSitesConfig parses a site table document
func ParseSitesConfig(data []byte) (*SitesConfig, error) {
	var config SitesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse sites.yaml: %w", err)
	}

	config.fillDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *SitesConfig) fillDefaults() {
	if len(c.Sites) == 0 {
		c.Sites = domain.DefaultSites()
	}
	for i := range c.Sites {
		s := &c.Sites[i]
		s.Key = domain.SiteKey(strings.ToLower(strings.TrimSpace(string(s.Key))))
		for j, h := range s.Hosts {
			s.Hosts[j] = strings.ToLower(strings.TrimSpace(h))
		}
		for j, h := range s.TextHints {
			s.TextHints[j] = strings.ToLower(h)
		}
	}
	c.LabelPrompt = strings.TrimSpace(c.LabelPrompt)
}

// Validate checks every site has a key and at least one host
func (c *SitesConfig) Validate() error {
	seen := make(map[domain.SiteKey]bool)
	for i, s := range c.Sites {
		if s.Key == "" {
			return &ConfigError{Field: fmt.Sprintf("sites[%d].key", i), Message: "required"}
		}
		if seen[s.Key] {
			return &ConfigError{Field: fmt.Sprintf("sites[%d].key", i), Message: "duplicate " + string(s.Key)}
		}
		seen[s.Key] = true
		if len(s.Hosts) == 0 {
			return &ConfigError{Field: fmt.Sprintf("sites[%d].hosts", i), Message: "required"}
		}
	}
	return nil
}
