package interfaces

// SecretCipher encrypts secrets kept in the database.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(payload string) (string, error)
}
