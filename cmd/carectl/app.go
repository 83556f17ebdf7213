package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkiryanov/carectl/internal/apiclient"
	"github.com/nkiryanov/carectl/internal/db"
	"github.com/nkiryanov/carectl/internal/logger"
	"github.com/nkiryanov/carectl/internal/repository"
	"github.com/nkiryanov/carectl/internal/repository/memory"
	"github.com/nkiryanov/carectl/internal/repository/postgres"
	"github.com/nkiryanov/carectl/internal/repository/sealed"
	"github.com/nkiryanov/carectl/internal/repository/sqlite"
	"github.com/nkiryanov/carectl/internal/schedule"
	"github.com/nkiryanov/carectl/internal/session"
)

const (
	schemeMemory   = "memory://"
	schemeSQLite   = "sqlite://"
	schemePostgres = "postgres://"
	schemePgShort  = "postgresql://"
)

// App is everything a command needs, built once per invocation
type App struct {
	Client    *apiclient.Client
	Tokens    *apiclient.TokenClient
	Manager   *session.Manager
	Schedules *schedule.Service

	log    logger.Logger
	out    io.Writer
	format string
	close  func()
}

func NewApp(ctx context.Context, c *Config, stdout io.Writer, stderr io.Writer) (*App, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	format, err := parseOutput(c.Output)
	if err != nil {
		return nil, err
	}

	// Open credential store and run migrations
	repo, closeRepo, err := openCredentialRepo(ctx, c.CredentialsDSN)
	if err != nil {
		return nil, fmt.Errorf("error while opening credential store. Err: %w", err)
	}

	if c.SecretKey != "" {
		repo, err = sealed.New(repo, c.SecretKey)
		if err != nil {
			closeRepo()
			return nil, fmt.Errorf("error while initializing sealed store. Err: %w", err)
		}
	}

	// Initialize session and client
	tokens := apiclient.NewTokenClient(c.APIURL, apiclient.WithLogger(log))
	manager := session.New(session.NewStore(repo, c.Profile), tokens, session.Config{
		Logger: log,
		OnExpired: func() {
			fmt.Fprintln(stderr, "session expired, run 'carectl login' to start a new one")
		},
	})
	client := apiclient.New(c.APIURL, tokens, manager, apiclient.WithLogger(log))

	return &App{
		Client:    client,
		Tokens:    tokens,
		Manager:   manager,
		Schedules: schedule.NewService(client.Schedules, client.Professionals, client.Patients, schedule.Config{Logger: log}),
		log:       log,
		out:       stdout,
		format:    format,
		close:     closeRepo,
	}, nil
}

func (a *App) Close() {
	a.close()
}

// openCredentialRepo picks the store by dsn scheme, anything without a known scheme is a sqlite file path
func openCredentialRepo(ctx context.Context, dsn string) (repository.CredentialRepo, func(), error) {
	switch {
	case dsn == schemeMemory:
		return memory.NewCredentialRepo(), func() {}, nil

	case strings.HasPrefix(dsn, schemePostgres), strings.HasPrefix(dsn, schemePgShort):
		pool, err := db.ConnectPostgresAndMigrate(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return &postgres.CredentialRepo{DB: pool}, pool.Close, nil

	default:
		path := strings.TrimPrefix(dsn, schemeSQLite)
		if path == "" {
			var err error
			if path, err = defaultSQLitePath(); err != nil {
				return nil, nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("cant create credential store directory. Err: %w", err)
		}

		conn, err := db.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return &sqlite.CredentialRepo{DB: conn}, func() { _ = conn.Close() }, nil
	}
}

func defaultSQLitePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cant find user config directory, set credentials store explicitly. Err: %w", err)
	}
	return filepath.Join(dir, "carectl", "credentials.db"), nil
}
