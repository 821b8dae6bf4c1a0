package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"article-admin-backend/internal/config"
	"article-admin-backend/internal/logging"
	m "article-admin-backend/internal/model"
	"article-admin-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context) error

// Exported test users & articles
var (
	TestAdminUser m.User
	TestAuthor1   m.User
	TestAuthor2   m.User

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	// Exported seeded articles, TestArticle1 belongs to TestAuthor1 and TestArticle2 to TestAuthor2
	TestArticle1 m.Article
	TestArticle2 m.Article
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}
	terminate := func(ctx context.Context) error {
		return dbContainer.Terminate(ctx)
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return terminate, nil, err
	}

	cfg := config.DBConfig{
		UseConnStr:    true,
		ConnectionStr: fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
		DBName:        dbName,
	}

	if err := waitReachable(cfg.ConnectionStr); err != nil {
		return terminate, nil, err
	}

	db, err := NewDBInstance(cfg, logging.Discard())
	if err != nil {
		return terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = terminate

	return terminate, db, nil
}

// waitReachable pings the container through the pgx stdlib driver until it
// accepts connections. The log based wait strategy sometimes fires early.
func waitReachable(dsn string) error {
	raw, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer raw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for {
		if err = raw.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("test database not reachable: %w", err)
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// seedTestData inserts an admin, two authors and one article per author.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount > 0 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username string
		role     string
	}{
		{"admin_user", m.RoleAdmin},
		{"author_1", m.RoleAuthor},
		{"author_2", m.RoleAuthor},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	articles := []m.Article{
		{
			AuthorID: TestAuthor1.ID,
			Title:    "Writing Go services",
			Slug:     "writing-go-services",
			Content:  "Handlers, repositories and the glue between them.",
		},
		{
			AuthorID: TestAuthor2.ID,
			Title:    "Object storage primer",
			Slug:     "object-storage-primer",
			Content:  "Buckets, keys and presigned links.",
		},
	}
	if err := db.Create(&articles).Error; err != nil {
		return err
	}
	TestArticle1 = articles[0]
	TestArticle2 = articles[1]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{"admin_user", "author_1", "author_2"}).Find(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	if err := db.First(&TestArticle1, "slug = ?", "writing-go-services").Error; err != nil {
		return err
	}
	return db.First(&TestArticle2, "slug = ?", "object-storage-primer").Error
}

func assignUsers(users []m.User) {
	for _, u := range users {
		switch u.Username {
		case "admin_user":
			TestAdminUser = u
		case "author_1":
			TestAuthor1 = u
		case "author_2":
			TestAuthor2 = u
		}
	}
}
