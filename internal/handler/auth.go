package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/role"
)

// AuthHandler implements the login endpoint. Authentication is a plain
// username-to-role lookup: the desktop client sends a username and
// receives the role it should gate its UI on. There are no passwords
// and no tokens; every mutating request re-identifies its user by name.
type AuthHandler struct {
	Accounts role.AccountStore
}

func NewAuthHandler(accounts role.AccountStore) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

// Login handles POST /v1/auth/login. An unknown username yields 404.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&body); err != nil || body.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username is required"})
	}
	acc, err := h.Accounts.FindByUsername(c.Request().Context(), body.Username)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"username": acc.Username, "role": acc.Role})
}
