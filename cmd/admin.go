package cmd

import (
	"errors"
	"fmt"
	"strings"

	"eventhall-backend/config"
	"eventhall-backend/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account, or promote an existing one",
	Example: `  eventhall create-admin --email owner@hall.example --password 's3cret!pass' --name "Hall Owner"`,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().String("email", "", "Admin email (required)")
	createAdminCmd.Flags().String("password", "", "Admin password, at least 8 characters (required)")
	createAdminCmd.Flags().String("name", "Administrator", "Full name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := config.OpenDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return ensureAdmin(db, config.AdminConfig{Email: email, Password: password, FullName: name}, log)
}

// ensureAdmin creates the configured admin when no user has that email,
// and promotes the existing user otherwise.
func ensureAdmin(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return nil
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin && user.IsActive {
			return nil
		}
		if err := db.Model(&user).Updates(map[string]interface{}{"role": models.RoleAdmin, "is_active": true}).Error; err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		log.Info("promoted existing user to admin", zap.String("email", email))
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	fullName := admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}
	user = models.User{
		Email:    email,
		Username: strings.SplitN(email, "@", 2)[0],
		Password: admin.Password,
		FullName: fullName,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("created admin account", zap.String("email", email))
	return nil
}
