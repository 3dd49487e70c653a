package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"velastudio/models"
)

const tokenTTL = 24 * time.Hour

// invalidCredentials is returned for unknown usernames and wrong passwords
// alike, so callers cannot tell whether an account exists.
const invalidCredentials = "Invalid credentials"

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/adminLogin", a.adminLogin)
}

// TokenClaims is the payload of the admin token. The token is base64-encoded
// JSON with no signature; any holder able to reproduce the encoding can
// forge one.
type TokenClaims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// EncodeToken builds the opaque admin token for a user, expiring 24h from now.
func EncodeToken(user models.AdminUser, now time.Time) (string, error) {
	claims := TokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenTTL).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeToken unpacks a token without verifying anything beyond its shape.
func DecodeToken(token string) (*TokenClaims, error) {
	payload, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthModule) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty fields never reach the database but still get the same
		// generic failure message.
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": invalidCredentials,
		})
		return
	}

	var user models.AdminUser
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": invalidCredentials,
		})
		return
	}

	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": invalidCredentials,
		})
		return
	}

	token, err := EncodeToken(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Could not create session token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"message": "Login successful",
	})
}

// RequireAuth guards the admin operations. It accepts a bearer token from
// adminLogin and rejects missing, malformed and expired ones.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		c.Abort()
		return
	}

	claims, err := DecodeToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	if time.Now().Unix() >= claims.ExpiresAt {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		c.Abort()
		return
	}

	c.Set("admin_id", claims.UserID)
	c.Set("admin_username", claims.Username)
	c.Next()
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
