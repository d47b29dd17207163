package repository

// Repositories groups every repository the use cases depend on.
type Repositories struct {
	User              UserRepository
	VerificationToken VerificationTokenRepository
	RegistrationLog   RegistrationLogRepository
	Session           SessionRepository
	AppConfig         AppConfigRepository
	TagCache          TagCacheRepository
	Lease             LeaseRepository
	AuditLog          AuditLogRepository
	Mail              MailRepository
}
