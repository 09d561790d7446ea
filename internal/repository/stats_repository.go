package repository

import (
	"github.com/caratemple/forum/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// Stats counts the dashboard totals
func (r *GormStatsRepository) Stats() (Stats, error) {
	var stats Stats

	if err := r.db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return Stats{}, err
	}
	if err := r.db.Model(&models.Discussion{}).Count(&stats.Discussions).Error; err != nil {
		return Stats{}, err
	}
	if err := r.db.Model(&models.Post{}).Where("is_deleted = ?", false).Count(&stats.Posts).Error; err != nil {
		return Stats{}, err
	}
	if err := r.db.Model(&models.PostLike{}).Count(&stats.Likes).Error; err != nil {
		return Stats{}, err
	}

	return stats, nil
}
