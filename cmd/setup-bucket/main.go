package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"taskboard/pkg/config"
)

// setup-bucket เตรียม bucket สำหรับไฟล์แนบของ task (STORAGE_TYPE=s3)
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	s3cfg := cfg.Storage.S3

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("  Task Attachment Bucket Setup")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("\nEndpoint: %s\n", s3cfg.Endpoint)
	fmt.Printf("Bucket: %s\n", s3cfg.Bucket)
	fmt.Printf("Region: %s\n", s3cfg.Region)

	client, err := minio.New(s3cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		Secure: s3cfg.UseSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, s3cfg.Bucket)
	if err != nil {
		log.Fatalf("Failed to check bucket: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s3cfg.Bucket, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			log.Fatalf("Failed to create bucket: %v", err)
		}
		fmt.Printf("\n✓ Bucket '%s' created\n", s3cfg.Bucket)
	} else {
		fmt.Printf("\n✓ Bucket '%s' exists\n", s3cfg.Bucket)
	}

	// ลิงก์ไฟล์แนบใน response เปิดได้ตรงๆ จึงต้อง public read เฉพาะ tasks/*
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Sid":       "PublicReadTaskAttachments",
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/tasks/*", s3cfg.Bucket)},
			},
		},
	}

	policyJSON, _ := json.MarshalIndent(policy, "", "  ")

	fmt.Println("\n--- Setting Bucket Policy ---")
	fmt.Println(string(policyJSON))

	if err := client.SetBucketPolicy(ctx, s3cfg.Bucket, string(policyJSON)); err != nil {
		log.Printf("⚠️  Warning: Failed to set policy: %v", err)
	} else {
		fmt.Println("\n✓ Bucket policy set successfully")
	}

	fmt.Println("\n--- Testing Basic Operations ---")

	fmt.Print("Testing ListObjects... ")
	listOK := true
	for obj := range client.ListObjects(ctx, s3cfg.Bucket, minio.ListObjectsOptions{Prefix: "tasks/", MaxKeys: 1}) {
		if obj.Err != nil {
			fmt.Printf("❌ Failed: %v\n", obj.Err)
			listOK = false
			break
		}
	}
	if listOK {
		fmt.Println("✓ OK")
	}

	// ใช้ key ใต้ tasks/ เพื่อทดสอบ policy จริง
	const probeKey = "tasks/.setup-probe/probe.txt"
	probe := []byte("taskboard storage permission check")

	fmt.Print("Testing PutObject... ")
	if _, err := client.PutObject(ctx, s3cfg.Bucket, probeKey, bytes.NewReader(probe), int64(len(probe)),
		minio.PutObjectOptions{ContentType: "text/plain"}); err != nil {
		fmt.Printf("❌ Failed: %v\n", err)
	} else {
		fmt.Println("✓ OK")

		fmt.Print("Testing StatObject... ")
		if _, err := client.StatObject(ctx, s3cfg.Bucket, probeKey, minio.StatObjectOptions{}); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
		} else {
			fmt.Println("✓ OK")
		}

		fmt.Print("Testing RemoveObject... ")
		if err := client.RemoveObject(ctx, s3cfg.Bucket, probeKey, minio.RemoveObjectOptions{}); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
			fmt.Println("   ⚠️  ไม่มีสิทธิ์ s3:DeleteObject: ไฟล์ที่ลบไม่สำเร็จจะค้างใน pending_file_deletions")
		} else {
			fmt.Println("✓ OK")
		}
	}

	fmt.Println(`
Access key ต้องมีสิทธิ์:
   - s3:PutObject (upload ไฟล์แนบ)
   - s3:GetObject (download)
   - s3:DeleteObject (ลบไฟล์เมื่อลบ task/document)
   - s3:ListBucket (orphan-sweep)`)

	fmt.Println("\n═══════════════════════════════════════════════════════════════")
	fmt.Println("  Setup Complete!")
	fmt.Println("═══════════════════════════════════════════════════════════════")
}
