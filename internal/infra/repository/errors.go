package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

// storeError classifies a backend failure. Missing rows become NotFoundError.
func storeError(op string, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource}
	}
	return &domain.StoreError{Op: op, Err: errors.WithStack(err)}
}
