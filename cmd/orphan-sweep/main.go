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
	"taskboard/infrastructure/postgres"
	"taskboard/infrastructure/storage"
	"taskboard/pkg/config"
	"taskboard/pkg/utils"
)

// keyStore คือ storage ที่ list key ได้ (local และ s3)
type keyStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteFile(path string) error
}

// orphan-sweep หาไฟล์ใต้ tasks/ ที่ไม่มี attachment หรือ outbox row อ้างถึง
func main() {
	yes := flag.Bool("y", false, "ลบโดยไม่ต้องยืนยัน")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("  Orphan Attachment Sweep")
	fmt.Println("  หาไฟล์แนบที่ไม่มี metadata อ้างถึง")
	fmt.Println("===========================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Println("✓ Connected to database")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	fmt.Printf("✓ Connected to %s storage\n", cfg.Storage.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	keys, err := store.ListKeys(ctx, utils.TaskFilesPrefix)
	if err != nil {
		log.Fatalf("Failed to list stored files: %v", err)
	}

	known, err := referencedPaths(ctx, db)
	if err != nil {
		log.Fatalf("Failed to load attachment paths: %v", err)
	}

	var orphans []string
	for _, key := range keys {
		if !known[key] {
			orphans = append(orphans, key)
		}
	}

	fmt.Printf("\nไฟล์ทั้งหมด %d, มี metadata %d, orphan %d\n", len(keys), len(keys)-len(orphans), len(orphans))
	if len(orphans) == 0 {
		return
	}
	for _, key := range orphans {
		fmt.Printf("  - %s\n", key)
	}

	if !*yes {
		fmt.Print("\nต้องการลบทั้งหมด? (y/N): ")
		var confirm string
		fmt.Scanln(&confirm)
		if strings.ToLower(confirm) != "y" {
			fmt.Println("ยกเลิก")
			return
		}
	}

	deleted := 0
	for _, key := range orphans {
		if err := store.DeleteFile(key); err != nil {
			fmt.Printf("  ลบ %s ... ERROR: %v\n", key, err)
			continue
		}
		deleted++
	}

	fmt.Println("\n===========================================")
	fmt.Printf("  ลบแล้ว %d/%d ไฟล์\n", deleted, len(orphans))
	fmt.Println("===========================================")
}

func openStore(cfg *config.Config) (keyStore, error) {
	if cfg.Storage.Type == "s3" {
		return storage.NewS3Storage(storage.S3StorageConfig{
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			UseSSL:    cfg.Storage.S3.UseSSL,
			Region:    cfg.Storage.S3.Region,
			PublicURL: cfg.Storage.S3.PublicURL,
		})
	}
	return storage.NewLocalStorage(storage.LocalStorageConfig{
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
}

// referencedPaths รวม path ที่ยังมี attachment หรือรอลบใน outbox
func referencedPaths(ctx context.Context, db *gorm.DB) (map[string]bool, error) {
	var attached, pending []string
	if err := db.WithContext(ctx).Model(&models.Attachment{}).Pluck("path", &attached).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.PendingFileDeletion{}).Pluck("path", &pending).Error; err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(attached)+len(pending))
	for _, p := range append(attached, pending...) {
		known[strings.TrimPrefix(p, "/")] = true
	}
	return known, nil
}
