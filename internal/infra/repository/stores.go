package repository

import (
	"gorm.io/gorm"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/usecase"
)

// NewStores builds every relay store on top of one gorm handle.
func NewStores(db *gorm.DB) usecase.Stores {
	return usecase.Stores{
		Identities: NewIdentityRepository(db),
		Blocks:     NewBlockRepository(db),
		Bans:       NewBanRepository(db),
		Threads:    NewThreadRepository(db),
		Rates:      NewRateLimitRepository(db),
		Pending:    NewPendingRepository(db),
	}
}
