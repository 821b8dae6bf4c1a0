package auth

import (
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/utilities"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB       *database.DBinstanceStruct
	Attempts *AttemptLogger
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct, attempts *AttemptLogger) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB:       db,
		Attempts: attempts,
	}
}

type userInfo struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin author"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserHandler lets an admin create another admin or author account
// @Summary Create admin or author account
// @Description Only admin can access this endpoint. Password must be at least 8 characters long
// @Tags Auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Info body userInfo true "role can be only 'admin' or 'author'"
// @Success 201 {object} model.User "Account created"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 409 {object} utilities.ErrorResponse "Username already exist"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /admin/users [post]
func (lh *LocalAuthHandler) CreateUserHandler(c *gin.Context) {
	var info userInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password (at least 8 characters) and role ('admin' or 'author') must be provided",
		})
		return
	}

	user, err := utilities.CreateUser(lh.DB.DB, info.Username, info.Password, info.Role)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// LocalLoginHandler function handles local login by receiving username and password
// @Summary Handles local login by receiving username and password
// @Description Username must exist and password match
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} model.LoginResponse "Logged in"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Username not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		lh.Attempts.LogAuthAttempt(c, slog.LevelWarn, "Fail", info.Username, "unknown username")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		lh.Attempts.LogAuthAttempt(c, slog.LevelWarn, "Fail", info.Username, "wrong password")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	accessToken, _, err := GenerateStandardToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	lh.Attempts.LogAuthAttempt(c, slog.LevelInfo, "Success", user.ID.String(), "")
	c.JSON(http.StatusOK, model.LoginResponse{
		User:        user,
		AccessToken: accessToken,
	})
}
