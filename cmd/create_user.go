package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/uatas-cs/complaint-service/internal/config"
	"github.com/uatas-cs/complaint-service/internal/database"
	"github.com/uatas-cs/complaint-service/internal/service"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account directly in the database (bootstrap admins and QC reviewers)",
	RunE:  runCreateUser,
}

func init() {
	createUserCmd.Flags().String("username", "", "login name")
	createUserCmd.Flags().String("email", "", "email address")
	createUserCmd.Flags().String("phone", "", "phone number")
	createUserCmd.Flags().String("password", "", "initial password")
	createUserCmd.Flags().String("role", "staff", "admin, staff or qc")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	password, _ := cmd.Flags().GetString("password")
	role, _ := cmd.Flags().GetString("role")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(db, cfg.JWTSecret, 0)
	user, err := users.Register(ctx, username, email, phone, password, role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	log.Printf("create-user: %s (%s) id=%d", user.Username, user.Role, user.ID)
	return nil
}
