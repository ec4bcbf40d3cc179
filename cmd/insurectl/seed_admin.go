package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	pginfra "github.com/obakengshepherd/InsureClaim/internal/infrastructure/postgres"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

var seedAdminPhone string

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create or reset the bootstrap administrator",
	Long: `Creates the administrator named by ADMIN_EMAIL / ADMIN_NAME with the
password in ADMIN_PASSWORD. Running it again resets that account's password
and re-activates it.`,
	Args: cobra.NoArgs,
	RunE: runSeedAdmin,
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedAdminPhone, "phone", "+10000000000", "phone number stored on the admin account")
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return errors.New("ADMIN_PASSWORD must be set")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	admin := &entity.User{
		ID:           uuid.NewString(),
		FullName:     cfg.AdminName,
		Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		PasswordHash: hash,
		PhoneNumber:  seedAdminPhone,
		Role:         entity.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := pginfra.NewUserRepository(pool).Upsert(ctx, admin); err != nil {
		return err
	}
	cmd.Printf("admin ready: id=%s email=%s\n", admin.ID, admin.Email)
	return nil
}
