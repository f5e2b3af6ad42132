package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portfolio-site/portfolio-backend/config"
	"github.com/portfolio-site/portfolio-backend/internal/auth"
	"github.com/portfolio-site/portfolio-backend/internal/auth/repository"
	"github.com/portfolio-site/portfolio-backend/internal/auth/service"
)

var (
	adminEmail     string
	adminPrintOnly bool
)

// setAdminCmd writes the admin credential
var setAdminCmd = &cobra.Command{
	Use:   "set-admin",
	Short: "Set the admin email and password",
	Long: `Hash the admin password with bcrypt and store it in the admin record.

The password is read from PORTFOLIO_ADMIN_PASSWORD or, if unset, from the
first line of stdin. With --print-hash (or without Firebase configured) the
hash is printed for use as ADMIN_PASSWORD_HASH instead.`,
	RunE: runSetAdmin,
}

func init() {
	setAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	setAdminCmd.Flags().BoolVar(&adminPrintOnly, "print-hash", false, "Print the hash instead of writing it")
	_ = setAdminCmd.MarkFlagRequired("email")
}

func runSetAdmin(cmd *cobra.Command, args []string) error {
	password := os.Getenv("PORTFOLIO_ADMIN_PASSWORD")
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("no password given on stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if adminPrintOnly || !cfg.UsesFirebase() {
		fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_EMAIL=%s\nADMIN_PASSWORD_HASH=%s\n", adminEmail, hash)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	app, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("failed to get Firestore client: %w", err)
	}
	defer client.Close()

	repo := repository.NewFirestoreAdminRepository(client, cfg.Auth.AdminCollection, cfg.Auth.AdminDocID)
	if err := repo.Put(ctx, adminEmail, hash); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin record %s/%s updated\n", cfg.Auth.AdminCollection, cfg.Auth.AdminDocID)
	return nil
}
