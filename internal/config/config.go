package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// AuthTransport selects how the credential travels to the backend.
// A deployment uses exactly one.
type AuthTransport string

const (
	TransportQuery  AuthTransport = "query"
	TransportBearer AuthTransport = "bearer"
)

type Config struct {
	BaseURL          string
	AuthTransport    AuthTransport
	CredentialDir    string
	Ephemeral        bool
	RequestTimeout   time.Duration
	SearchDebounce   time.Duration
	DownloadDir      string
	Theme            Theme
	Mouse            bool
	Offline          bool
	OpenAIModel      string
	OpenAIBase       string
	OpenAITimeoutSec int
	ExportFormat     string
	ExportOut        string
	ShowVersion      bool

	// Internal
	ConfigFile string
}

// fileConfig mirrors the optional YAML file. Zero values leave the
// built-in defaults in place.
type fileConfig struct {
	BaseURL          string `yaml:"base_url"`
	AuthTransport    string `yaml:"auth_transport"`
	CredentialDir    string `yaml:"credential_dir"`
	RequestTimeout   int    `yaml:"request_timeout_sec"`
	SearchDebounceMS int    `yaml:"search_debounce_ms"`
	DownloadDir      string `yaml:"download_dir"`
	Theme            string `yaml:"theme"`
	Mouse            *bool  `yaml:"mouse"`
	Offline          bool   `yaml:"offline"`
	OpenAIModel      string `yaml:"openai_model"`
	OpenAIBase       string `yaml:"openai_base_url"`
	OpenAITimeoutSec int    `yaml:"openai_timeout_sec"`
}

func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse(os.Args[1:], os.Stderr)
}

// Parse builds a Config from defaults, the optional YAML file, the
// environment and finally args, in increasing precedence.
func Parse(args []string, errOut io.Writer) (*Config, error) {
	fc, path, err := readFileConfig()
	if err != nil {
		return nil, err
	}
	cfg := &Config{ConfigFile: path}

	fs := flag.NewFlagSet("filedesk", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&cfg.BaseURL, "base-url", getenvDefault("FILEDESK_BASE_URL", pick(fc.BaseURL, "http://localhost:8080")), "backend base URL")
	transport := ""
	fs.StringVar(&transport, "auth-transport", getenvDefault("FILEDESK_AUTH_TRANSPORT", pick(fc.AuthTransport, string(TransportQuery))), "credential transport: query|bearer")
	fs.StringVar(&cfg.CredentialDir, "credential-dir", getenvDefault("FILEDESK_CREDENTIAL_DIR", pick(fc.CredentialDir, defaultCredentialDir())), "directory holding the stored credential")
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", false, "keep the credential in memory only")
	timeoutSec := 0
	fs.IntVar(&timeoutSec, "timeout-sec", getenvDefaultInt("FILEDESK_TIMEOUT_SEC", pickInt(fc.RequestTimeout, 30)), "backend request timeout in seconds")
	debounceMS := 0
	fs.IntVar(&debounceMS, "search-debounce-ms", getenvDefaultInt("FILEDESK_SEARCH_DEBOUNCE_MS", pickInt(fc.SearchDebounceMS, 300)), "quiet period before a search is applied")
	fs.StringVar(&cfg.DownloadDir, "download-dir", getenvDefault("FILEDESK_DOWNLOAD_DIR", pick(fc.DownloadDir, ".")), "where downloads are written")
	theme := ""
	fs.StringVar(&theme, "theme", pick(fc.Theme, string(ThemeDark)), "theme: dark|light")
	mouse := true
	if fc.Mouse != nil {
		mouse = *fc.Mouse
	}
	fs.BoolVar(&cfg.Mouse, "mouse", mouse, "enable mouse support")
	fs.BoolVar(&cfg.Offline, "offline", fc.Offline, "disable OpenAI features")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("FILEDESK_OPENAI_MODEL", pick(fc.OpenAIModel, "gpt-4o-mini")), "OpenAI model override")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("FILEDESK_OPENAI_BASE_URL", fc.OpenAIBase), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("FILEDESK_OPENAI_TIMEOUT_SEC", pickInt(fc.OpenAITimeoutSec, 120)), "OpenAI request timeout in seconds")
	fs.StringVar(&cfg.ExportFormat, "export", "", "export the catalog view: csv|json")
	fs.StringVar(&cfg.ExportOut, "out", "", "output path for export")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Theme = Theme(strings.ToLower(theme))
	if cfg.Theme != ThemeDark && cfg.Theme != ThemeLight {
		return nil, fmt.Errorf("unknown theme %q", theme)
	}
	cfg.AuthTransport = AuthTransport(strings.ToLower(strings.TrimSpace(transport)))
	if cfg.AuthTransport != TransportQuery && cfg.AuthTransport != TransportBearer {
		return nil, fmt.Errorf("unknown auth transport %q (want query or bearer)", transport)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("--base-url must not be empty")
	}
	if cfg.ExportFormat != "" && cfg.ExportOut == "" {
		return nil, errors.New("--export requires --out path")
	}
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	if debounceMS < 0 {
		debounceMS = 0
	}
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second
	cfg.SearchDebounce = time.Duration(debounceMS) * time.Millisecond
	return cfg, nil
}

func readFileConfig() (fileConfig, string, error) {
	var fc fileConfig
	path := os.Getenv("FILEDESK_CONFIG")
	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fc, "", nil
		}
		path = filepath.Join(dir, "filedesk", "config.yaml")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return fc, "", nil
		}
		return fc, "", fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, path, nil
}

func defaultCredentialDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "filedesk")
	}
	return filepath.Join(os.TempDir(), "filedesk")
}

func pick(v, d string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return d
}

func pickInt(v, d int) int {
	if v != 0 {
		return v
	}
	return d
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("base=%s transport=%s theme=%s offline=%v ephemeral=%v", c.BaseURL, c.AuthTransport, c.Theme, c.Offline, c.Ephemeral)
}
