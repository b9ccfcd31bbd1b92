package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/register-admin creates the panel account. Only allowed
// while no account exists yet.
func RegisterAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentialsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "Email e senha (mínimo 8 caracteres) obrigatórios")
		}

		var count int64
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao verificar contas")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Conta de administrador já existe")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao gerar hash da senha")
		}

		user := models.User{Email: body.Email, PasswordHash: string(hash)}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao criar a conta")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success"})
	}
}

// POST /auth/login
func LoginHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentialsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		var user models.User
		if err := db.First(&user, "email = ?", strings.TrimSpace(strings.ToLower(body.Email))).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Credenciais inválidas")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Credenciais inválidas")
		}

		token, err := GenerateToken(secret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao gerar o token")
		}

		return c.JSON(fiber.Map{"status": "success", "token": token})
	}
}
