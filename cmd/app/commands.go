// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"codeberg.org/oliverandrich/school-auth/internal/database"
	"codeberg.org/oliverandrich/school-auth/internal/models"
	"codeberg.org/oliverandrich/school-auth/internal/repository"
	authsvc "codeberg.org/oliverandrich/school-auth/internal/services/auth"
	"codeberg.org/oliverandrich/school-auth/internal/services/password"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: withDB(database.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: withDB(database.MigrateDown),
			},
			{
				Name:   "reset",
				Usage:  "Roll back all migrations",
				Action: withDB(database.MigrateReset),
			},
			{
				Name:   "status",
				Usage:  "Show the migration status",
				Action: withDB(database.MigrationStatus),
			},
		},
	}
}

// withDB connects without migrating and runs fn against the database.
func withDB(fn func(*sqlx.DB) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		db, err := database.Connect(cmd.String("database-dsn"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = db.Close() }()
		return fn(db)
	}
}

func roleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Usage: "Email of the user", Required: true},
		&cli.StringFlag{Name: "role", Usage: "Name of the role", Required: true},
	}
}

func rolesCommand() *cli.Command {
	return &cli.Command{
		Name:  "roles",
		Usage: "Manage user roles",
		Commands: []*cli.Command{
			{
				Name:   "assign",
				Usage:  "Assign a role to a user, creating the role if needed",
				Flags:  roleFlags(),
				Action: withRepo(assignRole),
			},
			{
				Name:   "revoke",
				Usage:  "Remove a role from a user",
				Flags:  roleFlags(),
				Action: withRepo(revokeRole),
			},
		},
	}
}

// withRepo opens and migrates the database and hands a repository to fn.
func withRepo(fn func(context.Context, *cli.Command, *repository.Repository) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		db, err := database.Open(cmd.String("database-dsn"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()
		return fn(ctx, cmd, repository.New(db))
	}
}

func activeUserByEmail(ctx context.Context, repo *repository.Repository, email string) (models.User, error) {
	user, err := repo.GetUserByEmail(ctx, email, repository.Active)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fmt.Errorf("no active user with email %s", email)
	}
	return user, err
}

func assignRole(ctx context.Context, cmd *cli.Command, repo *repository.Repository) error {
	email := authsvc.NormalizeEmail(cmd.String("email"))
	user, err := activeUserByEmail(ctx, repo, email)
	if err != nil {
		return err
	}

	role, err := repo.EnsureRole(ctx, strings.TrimSpace(cmd.String("role")))
	if err != nil {
		return err
	}
	if err := repo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "assigned role %s to %s\n", role.Name, email)
	return err
}

func revokeRole(ctx context.Context, cmd *cli.Command, repo *repository.Repository) error {
	email := authsvc.NormalizeEmail(cmd.String("email"))
	user, err := activeUserByEmail(ctx, repo, email)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.String("role"))
	role, err := repo.GetRoleByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("unknown role %s", name)
	}
	if err != nil {
		return err
	}

	if err := repo.RevokeRole(ctx, user.ID, role.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s does not have role %s", email, name)
		}
		return err
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "revoked role %s from %s\n", role.Name, email)
	return err
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Inspect and restore user accounts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Value: "active", Usage: "active, deleted or all"},
				},
				Action: withRepo(listUsers),
			},
			{
				Name:  "restore",
				Usage: "Undo the soft delete of a user",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "ID of the deleted user", Required: true},
				},
				Action: withRepo(restoreUser),
			},
		},
	}
}

func listUsers(ctx context.Context, cmd *cli.Command, repo *repository.Repository) error {
	scope, err := repository.ParseScope(cmd.String("scope"))
	if err != nil {
		return err
	}

	users, err := repo.ListUsers(ctx, scope)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tSTATUS")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, userStatus(u))
	}
	return w.Flush()
}

func userStatus(u models.User) string {
	switch {
	case u.IsDeleted():
		return "deleted"
	case !u.IsActive:
		return "inactive"
	}
	return "active"
}

func restoreUser(ctx context.Context, cmd *cli.Command, repo *repository.Repository) error {
	id := cmd.Int64("id")
	if err := repo.RestoreUser(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("no deleted user with id %d", id)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return fmt.Errorf("email of user %d belongs to an active account", id)
		}
		return err
	}

	_, err := fmt.Fprintf(cmd.Root().Writer, "restored user %d\n", id)
	return err
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print a password hash for seeding (reads stdin without argument)",
		ArgsUsage: "[password]",
		Action:    hashPassword,
	}
}

func hashPassword(_ context.Context, cmd *cli.Command) error {
	plaintext := cmd.Args().First()
	if plaintext == "" {
		line, err := bufio.NewReader(cmd.Root().Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("no password given: %w", err)
		}
		plaintext = strings.TrimRight(line, "\r\n")
	}

	hasher, err := password.NewHasher(int(cmd.Int("password-cost")))
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, hash)
	return err
}
