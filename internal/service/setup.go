package service

import (
	"github.com/gnomegl/labslurp/internal/config"
	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/projects"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient builds the API client from the settings and a resolved token.
func NewClient(s *config.Settings, token string, logger *zap.Logger) (*gitlab.Client, error) {
	return gitlab.NewClient(gitlab.Options{
		BaseURL:  s.GitLabURL,
		Token:    token,
		AuthMode: s.AuthMode,
		Timeout:  s.Timeout,
		Logger:   logger,
		Limits: gitlab.Limits{
			PerPage:        s.Limits.PerPage,
			EventMaxPages:  s.Limits.EventMaxPages,
			CommitMaxPages: s.Limits.CommitMaxPages,
		},
	})
}

// NewStore opens the project-list cache chosen by the settings. The returned
// close func is never nil.
func NewStore(s *config.Settings) (projects.Store, func() error) {
	if s.Cache.Backend != "redis" {
		return projects.NewFileStore(s.ProjectsDir, s.GitLabURL), func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{
		Addr:     s.Cache.RedisAddr,
		Password: s.Cache.RedisPassword,
		DB:       s.Cache.RedisDB,
	})
	store := projects.NewRedisStore(client, s.GitLabURL, projects.RedisStoreConfig{
		Namespace: s.Cache.Namespace,
		TTL:       s.Cache.TTL,
	})
	return store, store.Close
}
