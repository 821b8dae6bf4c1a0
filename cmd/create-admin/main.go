// Command-line tool to create an admin or author account.
// Leaving the username or password empty generates a random one.
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"article-admin-backend/internal/config"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/utilities"

	"gorm.io/gorm"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

// generateUniqueUsername tries until a unique username is found
func generateUniqueUsername(db *gorm.DB, prefix string) string {
	for {
		username := prefix + "_" + generateRandomString(4)
		var count int64
		db.Model(&model.User{}).Where("username = ?", username).Count(&count)
		if count == 0 {
			return username
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func main() {
	role := flag.String("role", model.RoleAdmin, "role of the new account (admin or author)")
	flag.Parse()

	if *role != model.RoleAdmin && *role != model.RoleAuthor {
		log.Fatalf("Unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDBInstance(cfg.DB, logging.Discard())
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() { _ = db.Close() }()

	fmt.Printf("Creating %s account\n", *role)
	reader := bufio.NewReader(os.Stdin)

	username := prompt(reader, "Enter username (empty to generate): ")
	if username == "" {
		username = generateUniqueUsername(db.DB, *role)
	}

	password := prompt(reader, "Enter password (empty to generate): ")
	if password == "" {
		password = generateRandomString(8)
	} else if confirm := prompt(reader, "Confirm password: "); confirm != password {
		fmt.Println("Passwords do not match.")
		return
	}

	user, err := utilities.CreateUser(db.DB, username, password, *role)
	if err != nil {
		fmt.Printf("Failed to create account: %v\n", err)
		return
	}

	fmt.Println("Account created successfully!")
	fmt.Println("======================================")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Role:     %s\n", user.Role)
	fmt.Println("======================================")
}
