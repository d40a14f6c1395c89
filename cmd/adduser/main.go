// Command adduser creates a user account directly in the database, for
// bootstrapping an instance without going through the HTTP API.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mkovalev/chatvault/internal/cryptox"
	"github.com/mkovalev/chatvault/internal/server/config"
	"github.com/mkovalev/chatvault/internal/server/models"
	"github.com/mkovalev/chatvault/internal/server/repositories/repomanager"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Enter email")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	fmt.Println("Enter name")
	name, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	passwordHash, err := cryptox.HashCredential(string(password))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	user, err := rm.Users(db).Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}

	fmt.Printf("Success! Created user %d (%s)\n", user.ID, user.Email)
	return nil
}
