package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"finsight/internal/config"
	"finsight/internal/container"

	"github.com/joho/godotenv"
)

// Imports a directory of finance files into the upload history so they can be
// re-activated from the dashboard.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <files_dir>")
	}
	_ = godotenv.Load()

	databaseURL := os.Args[1]
	filesDir := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Database.URL = databaseURL

	log.Printf("Starting import from %s into %s database", filesDir, cfg.Database.Driver)

	ctx := context.Background()
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	db, err := container.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := c.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Shutdown(ctx)

	files, err := findFinanceFiles(filesDir)
	if err != nil {
		log.Fatalf("Failed to find finance files: %v", err)
	}
	log.Printf("Found %d files to import", len(files))

	imported := 0
	skipped := 0
	for _, path := range files {
		if err := importFile(ctx, c, path); err != nil {
			log.Printf("Skipping %s: %v", path, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func importFile(ctx context.Context, c *container.Container, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := c.Loader.Load(ctx, f, filepath.Base(path))
	if err != nil {
		return err
	}
	if !snap.Recorded {
		return fmt.Errorf("not recorded in upload history")
	}
	log.Printf("Imported %s as %s (%d rows)", path, snap.ID, snap.Table.Len())
	return nil
}

func findFinanceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".xlsx":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
