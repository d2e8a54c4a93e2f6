package main

import (
	"log"
	"os"

	"tai-backend/internal/model"
	"tai-backend/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Course{},
		&model.UserCourse{},
		&model.Guardrail{},
		&model.CourseFile{},
		&model.Chunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Indexes & Views
	log.Println("Step 3: Creating Indexes and Views...")

	postMigrationSQL := []string{
		// ANN index for cosine retrieval over course material.
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding_value
		 ON chunks USING hnsw (embedding_value vector_cosine_ops);`,

		// View: searchable chunks joined with their source file.
		`CREATE OR REPLACE VIEW searchable_chunks AS
		 SELECT c.id AS chunk_id, c.course_id, c.chunk_index, c.content, c.embedding_value AS embedding, cf.filename
		 FROM chunks c JOIN course_files cf ON c.course_file_id = cf.id
		 WHERE c.deleted_at IS NULL AND cf.deleted_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
