package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	us      UserRetriever
	authKey string
	passKey string
}

func NewAuthHandler(us UserRetriever, authKey string, passKey string) *AuthHandler {
	return &AuthHandler{
		us:      us,
		authKey: authKey,
		passKey: passKey,
	}
}

func (h *AuthHandler) InitRoute(app *fiber.App) {

	app.Post("/login", h.Login)
	app.Use(h.AuthMiddleware)
}

// Claims represents the JWT claims
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {

	var req LoginRequest
	err := c.BodyParser(&req)
	if err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.us.RetrieveUserByUsername(req.Username)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
	if err != nil {
		return err
	}

	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.authKey))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(JWTResponse{
		Token:  tokenString,
		Expiry: expirationTime.Unix(),
	})
}

// AuthMiddleware accepts either the shared passkey (used by the bot's
// localhost relay) or a Bearer JWT issued by Login.
func (h *AuthHandler) AuthMiddleware(c *fiber.Ctx) error {

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return errors.New("authorization header missing")
	}

	if h.passKey != "" && authHeader == h.passKey {
		return c.Next()
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return errors.New("invalid authorization format")
	}

	tokenString := tokenParts[1]

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.authKey), nil
	})

	if err != nil {
		return err
	}

	if !token.Valid {
		return errors.New("invalid token")
	}

	return c.Next()
}
