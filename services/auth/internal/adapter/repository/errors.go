package repository

import (
	"errors"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"gorm.io/gorm"
)

// translateError maps driver-level errors onto domain repository errors.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}
