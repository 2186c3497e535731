package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"agri-api/internal/infrastructure/database/entities"
)

// AutoMigrate brings the conversation, farm, task and team tables up to date.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Thread{},
		&entities.Message{},
		&entities.Run{},
		&entities.Farm{},
		&entities.Zone{},
		&entities.SensorReading{},
		&entities.ZoneAlert{},
		&entities.Task{},
		&entities.TeamMember{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
