package db

import (
	"github.com/roomgate-dev/roomgate/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Room{},
		&models.RoomMembership{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	// Partial unique index guarding the "one active membership per user per
	// room" invariant. GORM tags cannot express partial indexes, so raw SQL;
	// the predicate syntax is shared by Postgres and SQLite.
	sql := `CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_membership
		ON room_memberships (user_id, room_id) WHERE is_active`

	return DB.Exec(sql).Error
}
