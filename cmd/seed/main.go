// Package main seeds a development database with one client and one billable
// project, then prints a bearer token for the seeded user.
//
//	go run ./cmd/seed -migrate
//	go run ./cmd/seed -user 6f1c2a4e-0d3b-4f6a-9a7e-1b2c3d4e5f60
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/pkordes/timekeeper/internal/config"
	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/middleware"
	"github.com/pkordes/timekeeper/internal/repo"
	"github.com/pkordes/timekeeper/migrations"
)

const (
	seedClient  = "Acme Corporation"
	seedEmail   = "contact@acme.com"
	seedProject = "Website Redesign"
	tokenTTL    = 30 * 24 * time.Hour
)

func main() {
	userFlag := flag.String("user", "", "user id to seed (random when empty)")
	migrate := flag.Bool("migrate", false, "apply pending migrations first")
	flag.Parse()

	if err := run(context.Background(), *userFlag, *migrate); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, userFlag string, migrate bool) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	userID := uuid.New()
	if userFlag != "" {
		if userID, err = uuid.Parse(userFlag); err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if migrate {
		db := stdlib.OpenDBFromPool(pool)
		_, err := migrations.Up(ctx, db)
		db.Close()
		if err != nil {
			return err
		}
	}

	project, err := seed(ctx, repo.NewClientRepo(pool), repo.NewProjectRepo(pool), userID)
	if err != nil {
		return err
	}

	token, err := middleware.NewAuthenticator(cfg.JWTSecret).IssueToken(userID, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Printf("user:    %s\n", userID)
	fmt.Printf("project: %s (%s)\n", project.ID, project.Name)
	fmt.Printf("token:   %s\n", token)
	return nil
}

// seed upserts the demo client and returns the demo project.
func seed(ctx context.Context, clients repo.ClientRepo, projects repo.ProjectRepo, userID uuid.UUID) (domain.Project, error) {
	client, err := clients.Upsert(ctx, domain.Client{
		UserID: userID,
		Name:   seedClient,
		Email:  seedEmail,
		Color:  "#4A90E2",
	})
	if err != nil {
		return domain.Project{}, err
	}
	return ensureProject(ctx, projects, userID, client)
}

// ensureProject returns the seeded project, creating it on the first run.
func ensureProject(ctx context.Context, projects repo.ProjectRepo, userID uuid.UUID, client domain.Client) (domain.Project, error) {
	existing, err := projects.ListByUser(ctx, userID)
	if err != nil {
		return domain.Project{}, err
	}
	for _, p := range existing {
		if p.Name == seedProject {
			return p, nil
		}
	}

	rate := decimal.NewFromInt(100)
	return projects.Create(ctx, domain.Project{
		UserID:     userID,
		ClientID:   &client.ID,
		Name:       seedProject,
		HourlyRate: &rate,
		Color:      "#7ED321",
	})
}
