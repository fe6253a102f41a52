// Package config resolves settings from the config file, the OS keyring,
// the environment and command-line flags, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-worklog/internal/assistant"
	"go-worklog/internal/jira"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "worklog"

	DefaultGeminiModel = assistant.DefaultGeminiModel
)

type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

type Config struct {
	JiraURL       string  `json:"jira_url"`
	JiraEmail     string  `json:"jira_email"`
	AuthScheme    string  `json:"auth_scheme,omitempty"`
	SearchPath    string  `json:"search_path,omitempty"`
	EpicNameField string  `json:"epic_name_field,omitempty"`
	Timeout       string  `json:"timeout,omitempty"`
	RateLimit     float64 `json:"rate_limit,omitempty"`
	GeminiModel   string  `json:"gemini_model"`
	MaxIssues     int     `json:"max_issues,omitempty"`

	// Secrets live in the keyring and only land in the file when the
	// keyring is unavailable.
	JiraAPIToken    string `json:"jira_api_token,omitempty"`
	JiraBearerToken string `json:"jira_bearer_token,omitempty"`
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`

	// Sources records where each non-default value came from.
	Sources map[string]Source `json:"-"`
}

// FlagOverrides holds command-line flag values. Zero values are ignored.
type FlagOverrides struct {
	URL     string
	Timeout time.Duration
}

type secret struct {
	name  string
	field func(*Config) *string
}

var secrets = []secret{
	{"jira_api_token", func(c *Config) *string { return &c.JiraAPIToken }},
	{"jira_bearer_token", func(c *Config) *string { return &c.JiraBearerToken }},
	{"gemini_api_key", func(c *Config) *string { return &c.GeminiAPIKey }},
}

func GeminiModelOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Gemini 3 Flash", "gemini-3-flash-preview"),
		huh.NewOption("Gemini 2.5 Flash", "gemini-2.5-flash"),
		huh.NewOption("Gemini 2.5 Flash Lite", "gemini-2.5-flash-lite"),
	}
}

func Default() *Config {
	return &Config{
		GeminiModel: DefaultGeminiModel,
		Sources:     map[string]Source{},
	}
}

// Dir is $WORKLOG_CONFIG_DIR, or ~/.worklog.
func Dir() string {
	if dir := os.Getenv("WORKLOG_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".worklog")
}

func Path() string {
	return filepath.Join(Dir(), "config.json")
}

func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

func keyringEnabled() bool {
	return os.Getenv("WORKLOG_NO_KEYRING") == ""
}

// Load resolves the configuration from file, keyring and environment. A
// missing file is not an error.
func Load() (*Config, error) {
	cfg, err := LoadStored()
	if err != nil {
		return nil, err
	}
	cfg.loadEnv()
	return cfg, nil
}

// LoadStored resolves only what was saved: the config file and the keyring.
func LoadStored() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(Path()); err != nil {
		return nil, err
	}
	cfg.loadKeyring()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var fc Config
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	c.setString("jira_url", &c.JiraURL, fc.JiraURL, SourceFile)
	c.setString("jira_email", &c.JiraEmail, fc.JiraEmail, SourceFile)
	c.setString("auth_scheme", &c.AuthScheme, fc.AuthScheme, SourceFile)
	c.setString("search_path", &c.SearchPath, fc.SearchPath, SourceFile)
	c.setString("epic_name_field", &c.EpicNameField, fc.EpicNameField, SourceFile)
	c.setString("timeout", &c.Timeout, fc.Timeout, SourceFile)
	c.setString("gemini_model", &c.GeminiModel, fc.GeminiModel, SourceFile)
	for _, s := range secrets {
		c.setString(s.name, s.field(c), *s.field(&fc), SourceFile)
	}
	if fc.RateLimit > 0 {
		c.RateLimit = fc.RateLimit
		c.Sources["rate_limit"] = SourceFile
	}
	if fc.MaxIssues > 0 {
		c.MaxIssues = fc.MaxIssues
		c.Sources["max_issues"] = SourceFile
	}
	return nil
}

// loadKeyring fills secrets the file did not carry. Keyring failures are
// treated as absence.
func (c *Config) loadKeyring() {
	if !keyringEnabled() {
		return
	}
	for _, s := range secrets {
		if *s.field(c) != "" {
			continue
		}
		if v, err := keyring.Get(keyringService, s.name); err == nil {
			c.setString(s.name, s.field(c), v, SourceKeyring)
		}
	}
}

func (c *Config) loadEnv() {
	c.setString("jira_url", &c.JiraURL, os.Getenv("JIRA_URL"), SourceEnv)
	c.setString("jira_email", &c.JiraEmail, os.Getenv("JIRA_EMAIL"), SourceEnv)
	c.setString("jira_api_token", &c.JiraAPIToken, os.Getenv("JIRA_API_TOKEN"), SourceEnv)
	c.setString("jira_bearer_token", &c.JiraBearerToken, os.Getenv("JIRA_BEARER_TOKEN"), SourceEnv)
	c.setString("auth_scheme", &c.AuthScheme, os.Getenv("JIRA_AUTH_SCHEME"), SourceEnv)
	c.setString("search_path", &c.SearchPath, os.Getenv("JIRA_SEARCH_PATH"), SourceEnv)
	c.setString("epic_name_field", &c.EpicNameField, os.Getenv("JIRA_EPIC_NAME_FIELD"), SourceEnv)
	c.setString("gemini_api_key", &c.GeminiAPIKey, os.Getenv("GEMINI_API_KEY"), SourceEnv)
	c.setString("gemini_model", &c.GeminiModel, os.Getenv("GEMINI_MODEL"), SourceEnv)
}

func (c *Config) ApplyFlags(f FlagOverrides) {
	c.setString("jira_url", &c.JiraURL, f.URL, SourceFlag)
	if f.Timeout != 0 {
		c.setString("timeout", &c.Timeout, f.Timeout.String(), SourceFlag)
	}
}

func (c *Config) setString(name string, dst *string, v string, src Source) {
	if v == "" {
		return
	}
	*dst = v
	if c.Sources == nil {
		c.Sources = map[string]Source{}
	}
	c.Sources[name] = src
}

// TimeoutDuration parses Timeout. Empty means the client default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(c.Timeout); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(c.Timeout); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid timeout %q", c.Timeout)
}

// Validate checks the Jira URL and that at least one credential mode is
// usable.
func (c *Config) Validate() error {
	if c.JiraURL == "" {
		return fmt.Errorf("jira url is not set (run `worklog config` or set JIRA_URL)")
	}
	u, err := url.Parse(c.JiraURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("jira url %q must start with http:// or https://", c.JiraURL)
	}
	if c.JiraBearerToken == "" && (c.JiraEmail == "" || c.JiraAPIToken == "") {
		return fmt.Errorf("no jira credentials: set an email and API token, or a bearer token")
	}
	switch strings.ToLower(c.AuthScheme) {
	case "", "bearer", "jwt":
	default:
		return fmt.Errorf("auth scheme %q must be Bearer or JWT", c.AuthScheme)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// ClientOptions maps the configuration onto jira.Options.
func (c *Config) ClientOptions(logger *pterm.Logger) (jira.Options, error) {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return jira.Options{}, err
	}
	scheme := c.AuthScheme
	if strings.EqualFold(scheme, "jwt") {
		scheme = "JWT"
	}
	return jira.Options{
		Email:         c.JiraEmail,
		APIToken:      c.JiraAPIToken,
		BearerToken:   c.JiraBearerToken,
		TokenScheme:   scheme,
		SearchPath:    c.SearchPath,
		EpicNameField: c.EpicNameField,
		Timeout:       timeout,
		RateLimit:     c.RateLimit,
		Logger:        logger,
	}, nil
}

// Save writes the config file. Secrets go to the keyring when it accepts
// them and stay in the file otherwise. It reports whether any secret was
// written to the file.
func Save(cfg *Config) (plaintext bool, err error) {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return false, fmt.Errorf("cannot create config directory: %w", err)
	}

	out := *cfg
	out.JiraURL = strings.TrimRight(out.JiraURL, "/")
	if keyringEnabled() {
		for _, s := range secrets {
			v := *s.field(&out)
			if v == "" {
				_ = keyring.Delete(keyringService, s.name)
				continue
			}
			if err := keyring.Set(keyringService, s.name, v); err == nil {
				*s.field(&out) = ""
			}
		}
	}
	for _, s := range secrets {
		if *s.field(&out) != "" {
			plaintext = true
		}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(Path(), data, 0600); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return plaintext, nil
}

// RunSetup edits the stored settings in a form and saves them. Values that
// only come from the environment are not offered, so they are never saved.
func RunSetup() (*Config, error) {
	existing, err := LoadStored()
	if err != nil {
		pterm.Warning.Printfln("Ignoring unreadable config: %v", err)
		existing = Default()
	}
	cfg := *existing

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Jira URL").
				Placeholder("https://your-org.atlassian.net").
				Value(&cfg.JiraURL).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return fmt.Errorf("URL must start with http:// or https://")
					}
					return nil
				}),
			huh.NewInput().
				Title("Jira Email").
				Description("Leave empty when using a bearer token").
				Placeholder("you@company.com").
				Value(&cfg.JiraEmail),
		).Title("Jira Connection"),

		huh.NewGroup(
			huh.NewInput().
				Title("Jira API Token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.JiraAPIToken),
			huh.NewInput().
				Title("Jira Bearer Token (optional, overrides email + API token)").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.JiraBearerToken),
			huh.NewInput().
				Title("Gemini API Key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GeminiAPIKey),
		).Title("API Tokens"),

		huh.NewGroup(
			huh.NewInput().
				Title("Epic Name field").
				Placeholder(jira.DefaultEpicNameField).
				Value(&cfg.EpicNameField),
			huh.NewSelect[string]().
				Title("Gemini Model").
				Options(GeminiModelOptions()...).
				Value(&cfg.GeminiModel),
		).Title("Advanced"),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	cfg.JiraURL = strings.TrimRight(cfg.JiraURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plaintext, err := Save(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	if plaintext {
		pterm.Warning.Printfln("System keyring unavailable, secrets stored in plaintext at %s", Path())
	}
	pterm.Success.Printfln("Config saved to %s", Path())
	return &cfg, nil
}
