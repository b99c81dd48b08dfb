package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LABSLURP_"

// Settings is built once at start and passed to every component that needs
// it. Nothing reads configuration from globals after that.
type Settings struct {
	GitLabURL   string        `yaml:"gitlab_url" validate:"required,url"`
	Token       string        `yaml:"token"`
	AuthMode    string        `yaml:"auth_mode" validate:"oneof=private oauth"`
	OutputDir   string        `yaml:"output_dir" validate:"required"`
	ProjectsDir string        `yaml:"projects_dir" validate:"required"`
	LogLevel    string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Cache       CacheSettings `yaml:"cache"`
	Limits      LimitSettings `yaml:"limits"`
}

type CacheSettings struct {
	Backend       string        `yaml:"backend" validate:"oneof=file redis"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	Namespace     string        `yaml:"namespace"`
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
}

// LimitSettings bound every remote scan.
type LimitSettings struct {
	PerPage                int `yaml:"per_page" validate:"gte=1,lte=100"`
	EventMaxPages          int `yaml:"event_max_pages" validate:"gte=1"`
	CommitMaxPages         int `yaml:"commit_max_pages" validate:"gte=1"`
	RangeCap               int `yaml:"range_cap" validate:"gte=1,lte=100"`
	SearchProjects         int `yaml:"search_projects" validate:"gte=1"`
	EnhancedSearchProjects int `yaml:"enhanced_search_projects" validate:"gtefield=SearchProjects"`
	LowResultThreshold     int `yaml:"low_result_threshold" validate:"gte=0"`
}

func Default() Settings {
	return Settings{
		GitLabURL:   "https://gitlab.com",
		AuthMode:    "private",
		OutputDir:   "exports",
		ProjectsDir: "projects",
		LogLevel:    "warn",
		Timeout:     30 * time.Second,
		Cache: CacheSettings{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			Namespace: "labslurp",
			TTL:       24 * time.Hour,
		},
		Limits: LimitSettings{
			PerPage:                100,
			EventMaxPages:          20,
			CommitMaxPages:         100,
			RangeCap:               10,
			SearchProjects:         10,
			EnhancedSearchProjects: 15,
			LowResultThreshold:     10,
		},
	}
}

// Overrides carries command-line values; empty fields leave the loaded
// value alone.
type Overrides struct {
	GitLabURL    string
	AuthMode     string
	OutputDir    string
	LogLevel     string
	CacheBackend string
}

type LoadOptions struct {
	// ConfigPath is an optional YAML file. Unknown keys are rejected.
	ConfigPath string
	// EnvFile is read if present; real environment variables win over it.
	EnvFile string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	Overrides Overrides
}

// Load applies defaults, the YAML file, the .env file, the environment and
// finally the overrides, then validates the result.
func Load(opts LoadOptions) (*Settings, error) {
	s := Default()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigPath, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", opts.EnvFile, err)
		}
		lookup = layered(lookup, dotenv)
	}
	if err := applyEnv(&s, lookup); err != nil {
		return nil, err
	}
	applyOverrides(&s, opts.Overrides)

	s.GitLabURL = strings.TrimRight(strings.TrimSpace(s.GitLabURL), "/")
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.AuthMode = strings.ToLower(s.AuthMode)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func layered(primary func(string) (string, bool), fallback map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("GITLAB_URL", &s.GitLabURL)
	str("TOKEN", &s.Token)
	str("AUTH_MODE", &s.AuthMode)
	str("OUTPUT_DIR", &s.OutputDir)
	str("PROJECTS_DIR", &s.ProjectsDir)
	str("LOG_LEVEL", &s.LogLevel)
	str("CACHE_BACKEND", &s.Cache.Backend)
	str("REDIS_ADDR", &s.Cache.RedisAddr)
	str("REDIS_PASSWORD", &s.Cache.RedisPassword)

	if v, ok := lookup(envPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		s.Timeout = d
	}
	if v, ok := lookup(envPrefix + "CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", envPrefix, err)
		}
		s.Cache.TTL = d
	}
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		s.Cache.RedisDB = n
	}
	return nil
}

func applyOverrides(s *Settings, o Overrides) {
	if o.GitLabURL != "" {
		s.GitLabURL = o.GitLabURL
	}
	if o.AuthMode != "" {
		s.AuthMode = o.AuthMode
	}
	if o.OutputDir != "" {
		s.OutputDir = o.OutputDir
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.CacheBackend != "" {
		s.Cache.Backend = o.CacheBackend
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field in one error.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}
