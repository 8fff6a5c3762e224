// dbtool creates, seeds, or drops the catalog tables.
//
//	dbtool create
//	dbtool seed
//	dbtool drop
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"catalogapi/internal/config"
	"catalogapi/internal/db"
	"catalogapi/internal/hash"
	"catalogapi/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: dbtool create|seed|drop")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	gdb, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	switch os.Args[1] {
	case "create":
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("create error: %v", err)
		}
		fmt.Println("tables created")
	case "seed":
		if err := seed(gdb); err != nil {
			log.Fatalf("seed error: %v", err)
		}
		fmt.Println("tables seeded")
	case "drop":
		if err := gdb.Migrator().DropTable(&models.User{}, &models.Product{}); err != nil {
			log.Fatalf("drop error: %v", err)
		}
		fmt.Println("tables dropped")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func seed(gdb *gorm.DB) error {
	userHash, err := hash.HashPassword("123456789")
	if err != nil {
		return err
	}
	adminHash, err := hash.HashPassword("abc12345")
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "user1", Email: "user1@gmail.com", PasswordHash: userHash},
		{Username: "admin", Email: "admin@gmail.com", PasswordHash: adminHash, IsAdmin: true},
	}
	if err := gdb.Create(&users).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Fruits", Description: "Fresh Fruits", Price: 15.99, Stock: 100},
		{Name: "Vegetables", Description: "Fresh Vegetables", Price: 10.99, Stock: 200},
	}
	return gdb.Create(&products).Error
}
