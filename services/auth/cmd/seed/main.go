// Command seed stores the initial app configuration and an admin account
// described by a YAML file.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/config"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	seedPath := flag.String("file", "configs/seed.yaml", "path to the seed YAML file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := cfg.Logger
	defer logger.Sync()

	seed, err := loadSeedFile(*seedPath)
	if err != nil {
		logger.Fatal("Failed to load seed file", zap.String("path", *seedPath), zap.Error(err))
	}

	// Initialize infrastructure
	infra, err := db.NewInfrastructure(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", zap.Error(err))
	}
	defer infra.Close()

	if err := db.Migrate(infra.DB, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := repository.InitRepositories(infra)
	useCases := usecase.SetupUseCases(logger, cfg, repos, infra.Messaging, infra.Encryption)

	ctx := context.Background()

	// App config
	encryptedPassword := ""
	if smtp := seed.Config.SMTP; smtp != nil && smtp.Password != "" {
		encryptedPassword, err = infra.Encryption.Encrypt(smtp.Password)
		if err != nil {
			logger.Fatal("Failed to encrypt SMTP password", zap.Error(err))
		}
	}

	patch := seed.Config.patch(encryptedPassword)
	if !patch.IsEmpty() {
		if _, err := useCases.AppConfig.Update(ctx, patch, ""); err != nil {
			logger.Fatal("Failed to seed app config", zap.Error(err))
		}
		logger.Info("App config seeded")
	}

	// Admin account
	if seed.Admin == nil {
		logger.Info("Seed completed")
		return
	}

	existing, err := repos.User.FindByEmail(ctx, entity.NormalizeEmail(seed.Admin.Email))
	if err != nil {
		logger.Fatal("Failed to look up admin", zap.Error(err))
	}
	if existing != nil {
		logger.Info("Admin already exists, skipping",
			zap.String("userID", existing.ID),
			zap.String("role", string(existing.Role)))
		logger.Info("Seed completed")
		return
	}

	hash, err := useCases.Credential.HashPassword(seed.Admin.Password)
	if err != nil {
		logger.Fatal("Failed to hash admin password", zap.Error(err))
	}

	userID, err := usecase.GenerateUserID()
	if err != nil {
		logger.Fatal("Failed to generate admin id", zap.Error(err))
	}

	admin, err := entity.NewUser(userID, seed.Admin.Name, seed.Admin.Email, &hash, "")
	if err != nil {
		logger.Fatal("Invalid admin account", zap.Error(err))
	}
	now := time.Now()
	admin.Role = entity.RoleAdmin
	admin.EmailVerifiedAt = &now

	if err := repos.User.Create(ctx, admin); err != nil {
		logger.Fatal("Failed to create admin", zap.Error(err))
	}

	logger.Info("Seed completed",
		zap.String("adminID", admin.ID),
		zap.String("adminEmail", admin.Email))
}
