package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hongminglow/account-be/internal/config"
	"github.com/hongminglow/account-be/internal/storage"
	"github.com/hongminglow/account-be/internal/storage/memory"
	"github.com/hongminglow/account-be/internal/storage/mongodb"
	"github.com/hongminglow/account-be/internal/storage/postgres"
)

// openUserStore picks the storage backend from the DATABASE_URL scheme.
func openUserStore(ctx context.Context, cfg config.Config) (storage.UserStore, error) {
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return postgres.NewUserStore(ctx, cfg.DatabaseURL)
	case "mongodb", "mongodb+srv":
		return mongodb.NewUserStore(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	case "memory":
		return memory.NewUserStore(), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}
