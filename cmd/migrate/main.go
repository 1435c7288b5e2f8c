package main

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/noticedesk/noticedesk-backend/internal/config"
	"github.com/noticedesk/noticedesk-backend/internal/store"
)

// Creates or updates the records table schema. Run before first boot
// in environments where the API user lacks DDL privileges.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}

	client := store.NewGormClient(db, cfg.StoreTimeout())
	if err := client.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
