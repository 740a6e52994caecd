package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/middleware"
	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/services"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// AccountHandler handles authentication routes on both the legacy proxy
// surface and the panel surface.
type AccountHandler struct {
	Accounts *services.AccountService
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// proxySignupRequest is the legacy shape: password_hash carries the
// plaintext password, which the gateway hashes before forwarding.
type proxySignupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// ProxySignup handles POST /api/proxy/create/users
// @Summary Create a user (legacy signup surface)
// @Description Hashes the plaintext carried in password_hash and forwards the create to the users resource
// @Tags Proxy
// @Accept json
// @Produce json
// @Param body body proxySignupRequest true "New user"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /proxy/create/users [post]
func (h *AccountHandler) ProxySignup(c *fiber.Ctx) error {
	var in proxySignupRequest
	if err := c.BodyParser(&in); err != nil {
		return types.ValidationError("Invalid request body.")
	}

	user, err := h.Accounts.Register(c.UserContext(), in.Name, in.Email, in.PasswordHash)
	if err != nil {
		return err
	}

	// The upstream creation result, unchanged.
	return c.JSON(fiber.Map{"status": "success", "id": user.ID})
}

// ProxyLogin handles POST /api/proxy/login
// @Summary Verify credentials (legacy login surface)
// @Description Verifies the password against the stored hash; the returned record never carries the hash
// @Tags Proxy
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /proxy/login [post]
func (h *AccountHandler) ProxyLogin(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return types.AuthError("Invalid email or password.")
	}

	user, token, err := h.Accounts.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		// A malformed email is rejected locally but still answers 401 on
		// this surface: the caller only learns the credentials failed.
		if kind := types.KindOf(err); kind == types.KindAuth || kind == types.KindValidation {
			return types.AuthError("Invalid email or password.")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   []models.User{user},
		"token":  token,
	})
}

// Signup handles POST /api/panel/signup
// @Summary Create a panel account
// @Tags Panel
// @Accept json
// @Produce json
// @Param body body signupRequest true "New account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.OpResponseStruct
// @Router /panel/signup [post]
func (h *AccountHandler) Signup(c *fiber.Ctx) error {
	var in signupRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.OpError(c, types.ValidationError("Invalid request body."))
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return utils.OpError(c, types.ValidationError("Passwords do not match."))
	}

	user, token, err := h.Accounts.Signup(c.UserContext(), in.Name, in.Email, in.Password)
	if err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, fiber.Map{"user": user, "token": token})
}

// Login handles POST /api/panel/login
// @Summary Log into the panel
// @Tags Panel
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.OpResponseStruct
// @Router /panel/login [post]
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.OpError(c, types.ValidationError("Invalid request body."))
	}

	user, token, err := h.Accounts.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, fiber.Map{"user": user, "token": token})
}

// Me handles GET /api/panel/me
// @Summary Current account
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/me [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	user, err := h.Accounts.Get(c.UserContext(), userID)
	if err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, fiber.Map{"user": user})
}

type upgradeRequest struct {
	PaymentProof string `json:"payment_proof"`
}

// Upgrade handles POST /api/panel/upgrade
// @Summary Upgrade the account to the paid plan
// @Tags Panel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body upgradeRequest true "Payment proof"
// @Success 200 {object} utils.OpResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/upgrade [post]
func (h *AccountHandler) Upgrade(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	var in upgradeRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.OpError(c, types.ValidationError("Invalid request body."))
	}

	if err := h.Accounts.Upgrade(c.UserContext(), userID, in.PaymentProof); err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, nil)
}
