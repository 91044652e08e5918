package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Arnau-Gelonch/zara-challenge/internal/storage"
)

// Creates the cart_slots table used by STORAGE_DRIVER=mysql.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := storage.OpenMySQL(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS cart_slots (
	  slot_key VARCHAR(191) NOT NULL,
	  payload MEDIUMBLOB NOT NULL,
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (slot_key)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if err := db.Exec(sql).Error; err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	log.Println("✓ cart_slots table created successfully")
}
