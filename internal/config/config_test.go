package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(LoadOptions{LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), *s)
	assert.Equal(t, 10, s.Limits.RangeCap)
	assert.Equal(t, 30*time.Second, s.Timeout)
}

func TestLoad_PrecedenceYAMLThenDotenvThenEnvThenFlags(t *testing.T) {
	cfgPath := writeFile(t, "labslurp.yaml", `
gitlab_url: https://yaml.example.com/
output_dir: from-yaml
projects_dir: from-yaml
log_level: info
timeout: 5s
cache:
  ttl: 1h
limits:
  search_projects: 5
  enhanced_search_projects: 8
`)
	envPath := writeFile(t, ".env", "LABSLURP_OUTPUT_DIR=from-dotenv\nLABSLURP_PROJECTS_DIR=from-dotenv\nLABSLURP_LOG_LEVEL=debug\n")

	s, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		EnvFile:    envPath,
		LookupEnv:  envMap(map[string]string{"LABSLURP_PROJECTS_DIR": "from-env", "LABSLURP_TOKEN": "tok"}),
		Overrides:  Overrides{LogLevel: "ERROR"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example.com", s.GitLabURL)
	assert.Equal(t, "from-dotenv", s.OutputDir)
	assert.Equal(t, "from-env", s.ProjectsDir)
	assert.Equal(t, "error", s.LogLevel)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, time.Hour, s.Cache.TTL)
	assert.Equal(t, 5, s.Limits.SearchProjects)
	assert.Equal(t, 100, s.Limits.PerPage, "unset keys keep defaults")
}

func TestLoad_MissingDotenvIsFine(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env"), LookupEnv: envMap(nil)})
	assert.NoError(t, err)
}

func TestLoad_RejectsUnknownYAMLKeys(t *testing.T) {
	cfgPath := writeFile(t, "bad.yaml", "gitlab_url: https://x.io\nverbose: true\n")
	_, err := Load(LoadOptions{ConfigPath: cfgPath, LookupEnv: envMap(nil)})
	assert.ErrorContains(t, err, "unmarshal yaml")
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfgPath := writeFile(t, "empty.yaml", "")
	s, err := Load(LoadOptions{ConfigPath: cfgPath, LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com", s.GitLabURL)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	_, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{"LABSLURP_TIMEOUT": "soon"})})
	assert.ErrorContains(t, err, "LABSLURP_TIMEOUT")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{name: "auth mode", mutate: func(s *Settings) { s.AuthMode = "basic" }, field: "AuthMode"},
		{name: "url", mutate: func(s *Settings) { s.GitLabURL = "not a url" }, field: "GitLabURL"},
		{name: "backend", mutate: func(s *Settings) { s.Cache.Backend = "memcached" }, field: "Backend"},
		{name: "redis addr", mutate: func(s *Settings) {
			s.Cache.Backend = "redis"
			s.Cache.RedisAddr = ""
		}, field: "RedisAddr"},
		{name: "per page", mutate: func(s *Settings) { s.Limits.PerPage = 500 }, field: "PerPage"},
		{name: "enhanced narrower", mutate: func(s *Settings) { s.Limits.EnhancedSearchProjects = 3 }, field: "EnhancedSearchProjects"},
		{name: "timeout", mutate: func(s *Settings) { s.Timeout = 0 }, field: "Timeout"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	s := Default()
	assert.NoError(t, s.Validate())
}
