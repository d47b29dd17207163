package repository

import (
	domainrepo "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db"
)

// InitRepositories builds every repository on top of the shared infrastructure.
func InitRepositories(infra *db.Infrastructure) *domainrepo.Repositories {
	return &domainrepo.Repositories{
		User:              NewUserRepository(infra.DB),
		VerificationToken: NewVerificationTokenRepository(infra.DB),
		RegistrationLog:   NewRegistrationLogRepository(infra.DB),
		Session:           NewSessionRepository(infra.DB),
		AppConfig:         NewAppConfigRepository(infra.DB),
		TagCache:          db.NewRedisTagCache(infra.RedisClient, infra.Logger),
		Lease:             db.NewRedisLease(infra.RedisClient, infra.Logger),
		AuditLog:          NewAuditLogRepository(infra.DB),
		Mail:              infra.Mailer,
	}
}
