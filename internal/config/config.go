// Package config holds all relkit configuration, loaded from
// .relkit/config.yaml at the repository root. Environment variables override
// secrets so CI never needs tokens committed to the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir is the per-repository state directory.
const Dir = ".relkit"

// FileName is the config file name inside Dir.
const FileName = "config.yaml"

// Config holds all relkit configuration.
type Config struct {
	// Path of the file carrying the __version__ marker, relative to the
	// repository root.
	VersionFile string `yaml:"version_file"`

	Repo    RepoConfig    `yaml:"repo"`
	Notes   NotesConfig   `yaml:"notes"`
	GitHub  GitHubConfig  `yaml:"github"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`
}

// RepoConfig identifies the repository and the branches the release
// pipeline works against.
type RepoConfig struct {
	Owner            string `yaml:"owner"`
	Name             string `yaml:"name"`
	BaseBranch       string `yaml:"base_branch"`
	BumpBranchPrefix string `yaml:"bump_branch_prefix"`
}

// NotesConfig is the release-notes configuration: ordered categories keyed by
// PR labels, plus the templates used to render each change line and the
// surrounding document.
type NotesConfig struct {
	Categories    []Category `yaml:"categories"`
	FallbackTitle string     `yaml:"fallback_title"`
	ExcludeLabels []string   `yaml:"exclude_labels"`

	// ChangeTemplate renders one PR line. Placeholders: $TITLE, $NUMBER,
	// $AUTHOR.
	ChangeTemplate string `yaml:"change_template"`

	// DocTemplate renders the whole document. Placeholders: $VERSION,
	// $PREVIOUS, $DATE, $CHANGES, $SUMMARY.
	DocTemplate string `yaml:"doc_template"`
}

// Category maps a set of PR labels to a changelog section.
type Category struct {
	Title  string   `yaml:"title"`
	Labels []string `yaml:"labels"`
}

// GitHubConfig configures the GitHub API client.
type GitHubConfig struct {
	Token string `yaml:"token"`
	// BaseURL switches the client to a GitHub Enterprise instance.
	BaseURL string `yaml:"base_url"`
}

// AIConfig configures the optional Gemini release-summary generator.
type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// LoggingConfig controls the categorized file logs under .relkit/logs/.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the configuration relkit init scaffolds.
func DefaultConfig() *Config {
	return &Config{
		VersionFile: "__version__",
		Repo: RepoConfig{
			BaseBranch:       "main",
			BumpBranchPrefix: "release/bump-",
		},
		Notes: NotesConfig{
			Categories: []Category{
				{Title: "Breaking Changes", Labels: []string{"breaking"}},
				{Title: "New Features", Labels: []string{"feature", "enhancement"}},
				{Title: "Bug Fixes", Labels: []string{"bug", "fix"}},
				{Title: "Documentation", Labels: []string{"documentation", "docs"}},
			},
			FallbackTitle:  "Other Changes",
			ExcludeLabels:  []string{"skip-changelog", "dependencies"},
			ChangeTemplate: "- $TITLE (#$NUMBER) @$AUTHOR",
			DocTemplate:    "## $VERSION ($DATE)\n\n$SUMMARY$CHANGES",
		},
		AI: AIConfig{
			Model: "gemini-2.5-flash",
		},
		Logging: LoggingConfig{
			DebugMode: false,
		},
	}
}

// Load reads and parses the config at path, then applies env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromRepo loads <root>/.relkit/config.yaml. A missing file yields the
// defaults (with env overrides applied) so read-only commands work without
// an init step.
func LoadFromRepo(root string) (*Config, error) {
	path := filepath.Join(root, Dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects configs the pipeline cannot act on.
func (c *Config) Validate() error {
	if c.VersionFile == "" {
		return fmt.Errorf("config: version_file is required")
	}
	if c.Repo.BaseBranch == "" {
		return fmt.Errorf("config: repo.base_branch is required")
	}
	seen := make(map[string]bool, len(c.Notes.Categories))
	for _, cat := range c.Notes.Categories {
		if cat.Title == "" {
			return fmt.Errorf("config: notes category with empty title")
		}
		if seen[cat.Title] {
			return fmt.Errorf("config: duplicate notes category %q", cat.Title)
		}
		seen[cat.Title] = true
	}
	return nil
}

// applyEnvOverrides lets CI inject secrets without touching the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RELKIT_GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	} else if v := os.Getenv("GITHUB_TOKEN"); v != "" && c.GitHub.Token == "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("RELKIT_BASE_BRANCH"); v != "" {
		c.Repo.BaseBranch = v
	}
	if v := os.Getenv("RELKIT_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}
