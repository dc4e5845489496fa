package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskboard/domain/models"
	natspkg "taskboard/infrastructure/nats"
	"taskboard/infrastructure/postgres"
	"taskboard/infrastructure/storage"
	"taskboard/pkg/config"
	"taskboard/pkg/utils"
)

type keyStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteFile(path string) error
}

// reset-data ล้างข้อมูลสำหรับ dev/test: tasks, ไฟล์แนบ, event stream
func main() {
	withUsers := flag.Bool("users", false, "ลบ users ด้วย")
	yes := flag.Bool("y", false, "ไม่ต้องยืนยัน")
	flag.Parse()

	fmt.Println("============================================")
	fmt.Println("  Taskboard - Clear All Data")
	fmt.Println("============================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to reset data when APP_ENV=production")
	}

	if !*yes {
		fmt.Print("\nล้างข้อมูลทั้งหมด? (y/N): ")
		var confirm string
		fmt.Scanln(&confirm)
		if strings.ToLower(confirm) != "y" {
			fmt.Println("ยกเลิก")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	clearDatabase(ctx, cfg, *withUsers)
	clearFiles(ctx, cfg)
	clearEvents(ctx, cfg)

	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("  Done! Ready for fresh testing.")
	fmt.Println("============================================")
}

func clearDatabase(ctx context.Context, cfg *config.Config, withUsers bool) {
	fmt.Println("\n[1/3] Clearing database...")

	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     cfg.Database.Driver,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
		SQLitePath: cfg.Database.SQLitePath,
		LogLevel:   "silent",
	})
	if err != nil {
		fmt.Printf("     Failed to connect to database: %v\n", err)
		return
	}

	// ลำดับตาม foreign key
	tables := []interface{}{&models.Attachment{}, &models.PendingFileDeletion{}, &models.Task{}}
	if withUsers {
		tables = append(tables, &models.User{})
	}

	all := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, table := range tables {
		result := all.Delete(table)
		if result.Error != nil {
			fmt.Printf("     Warning: could not clear %T: %v\n", table, result.Error)
			continue
		}
		fmt.Printf("     %T: %d rows\n", table, result.RowsAffected)
	}
}

func clearFiles(ctx context.Context, cfg *config.Config) {
	fmt.Println("\n[2/3] Clearing stored attachments...")

	var store keyStore
	var err error
	if cfg.Storage.Type == "s3" {
		store, err = storage.NewS3Storage(storage.S3StorageConfig{
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			UseSSL:    cfg.Storage.S3.UseSSL,
			Region:    cfg.Storage.S3.Region,
		})
	} else {
		store, err = storage.NewLocalStorage(storage.LocalStorageConfig{
			BasePath: cfg.Storage.BasePath,
			BaseURL:  cfg.Storage.BaseURL,
		})
	}
	if err != nil {
		fmt.Printf("     Storage not available: %v (skipping)\n", err)
		return
	}

	keys, err := store.ListKeys(ctx, utils.TaskFilesPrefix)
	if err != nil {
		fmt.Printf("     Failed to list files: %v\n", err)
		return
	}

	deleted := 0
	for _, key := range keys {
		if err := store.DeleteFile(key); err != nil {
			fmt.Printf("     Failed to delete %s: %v\n", key, err)
			continue
		}
		deleted++
	}
	fmt.Printf("     Deleted %d/%d files\n", deleted, len(keys))
}

func clearEvents(ctx context.Context, cfg *config.Config) {
	fmt.Println("\n[3/3] Clearing NATS JetStream...")

	if cfg.NATS.URL == "" {
		fmt.Println("     NATS_URL not set (skipping)")
		return
	}

	client, err := natspkg.NewClient(natspkg.ClientConfig{URL: cfg.NATS.URL})
	if err != nil {
		fmt.Printf("     NATS not available: %v (skipping)\n", err)
		return
	}
	defer client.Close()

	if err := client.Purge(ctx); err != nil {
		fmt.Printf("     %v\n", err)
		return
	}

	status, err := client.GetStatus(ctx)
	if err == nil {
		fmt.Printf("     Stream %s purged! Messages: %d\n", status.Name, status.Messages)
	}
}
