package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

type ResetInput struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthController struct {
	accounts Accounts
}

func NewAuthController(accounts Accounts) *AuthController {
	return &AuthController{accounts: accounts}
}

// Signup handles POST /signup.
func (h *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.Bind(&in) {
		return
	}
	u, err := h.accounts.Signup(c.Context(), in)
	if errors.Is(err, apperr.ErrConflict) {
		c.Error(http.StatusConflict, "E-Mail exists already, please pick a different one.")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(u)
}

// Login handles POST /login. The caller gets both a session cookie and a
// bearer token.
func (h *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.Bind(&in) {
		return
	}
	u, token, err := h.accounts.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	if sess := c.Session(); sess != nil {
		if err := sess.Regenerate(); err != nil {
			fail(c, err)
			return
		}
		sess.Set(middleware.SessionUserKey, u.ID)
		sess.Set(middleware.SessionRoleKey, u.Role)
		if err := sess.Save(c.Context(), c.W); err != nil {
			fail(c, err)
			return
		}
	}
	c.Success(map[string]any{"token": token, "user": u})
}

// Logout handles POST /logout.
func (h *AuthController) Logout(c *ctx.Context) {
	if sess := c.Session(); sess != nil {
		if err := sess.Invalidate(); err != nil {
			fail(c, err)
			return
		}
		if err := sess.Save(c.Context(), c.W); err != nil {
			fail(c, err)
			return
		}
	}
	c.Message("Logged out", nil)
}

// Reset handles POST /reset {email}.
func (h *AuthController) Reset(c *ctx.Context) {
	var in ResetInput
	if !c.Bind(&in) {
		return
	}
	err := h.accounts.RequestReset(c.Context(), in.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		c.NotFound("No account with that email found.")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Check your email for the reset link.", nil)
}

// NewPassword handles GET /reset/{token}.
func (h *AuthController) NewPassword(c *ctx.Context) {
	token := c.Param("token")
	userID, err := h.accounts.CheckResetToken(c.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"userId": userID, "token": token})
}

// ResetPassword handles POST /reset-password {userId, token, password}.
func (h *AuthController) ResetPassword(c *ctx.Context) {
	var in services.ResetPasswordInput
	if !c.Bind(&in) {
		return
	}
	if err := h.accounts.ResetPassword(c.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Message("Password updated", nil)
}
