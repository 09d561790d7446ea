package database

import (
	"gorm.io/gorm"

	"github.com/caratemple/forum/internal/utils"
)

// Paginate applies pagination to a GORM query. One extra row is fetched so
// PaginationParams.Response can tell whether a next page exists.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit + 1)
	}
}
