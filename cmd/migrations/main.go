package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const migrationsPath = "internal/adapters/repository/postgres/migrations"

// Applies schema migrations. With no arguments every *.up.sql file runs in
// lexical order; with a name argument only the matching file runs.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	files, err := migrationFiles(migrationsPath)
	if err != nil {
		log.Fatal(err)
	}

	if len(os.Args) > 1 {
		files, err = matchMigration(files, os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
	}

	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(migrationsPath, f))
		if err != nil {
			log.Fatal(err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Failed to execute %s: %v", f, err)
		}

		fmt.Printf("Applied %s\n", f)
	}
}

func migrationFiles(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func matchMigration(files []string, name string) ([]string, error) {
	for _, f := range files {
		if strings.Contains(f, name) {
			return []string{f}, nil
		}
	}
	return nil, fmt.Errorf("migration file not found: %s", name)
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
