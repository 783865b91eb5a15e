package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 10 * time.Minute

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,alpha_num,min=5"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,same=password"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	UserID   string `json:"userId"   validate:"required"`
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,alpha_num,min=5"`
}

type AuthService struct {
	users  repositories.UserRepository
	jobs   Dispatcher
	appURL string
	now    func() time.Time
}

// NewAuthService wires signup, login and password reset. appURL is the public
// base used in reset links.
func NewAuthService(users repositories.UserRepository, dispatcher Dispatcher, appURL string) *AuthService {
	return &AuthService{users: users, jobs: dispatcher, appURL: strings.TrimRight(appURL, "/"), now: time.Now}
}

// Signup creates a shopper account and queues the welcome mail.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, &apperr.ValidationError{Fields: errs}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, fmt.Errorf("signup %s: %w", email, apperr.ErrConflict)
	case !errors.Is(err, apperr.ErrNotFound):
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("signup: hash password: %w", err)
	}
	u := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	u.Cart.Clear()
	if err := s.users.Create(ctx, &u); err != nil {
		return models.User{}, err
	}

	s.queue(ctx, func() (queue.Job, error) { return jobs.Welcome(u.Email) })
	return u, nil
}

// Login checks the credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, "", &apperr.ValidationError{Fields: errs}
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return models.User{}, "", apperr.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, u.Role)
	if err != nil {
		return models.User{}, "", fmt.Errorf("login: issue token: %w", err)
	}
	return u, token, nil
}

// RequestReset stores a fresh reset token on the account and mails the link.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Invalid("email", "The email field is required.")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := auth.ResetToken()
	if err != nil {
		return fmt.Errorf("reset: token: %w", err)
	}
	expires := s.now().Add(ResetTokenTTL)
	u.ResetToken = token
	u.ResetTokenExpires = &expires
	if err := s.users.Update(ctx, &u); err != nil {
		return err
	}

	link := s.appURL + "/reset/" + token
	s.queue(ctx, func() (queue.Job, error) { return jobs.PasswordReset(u.Email, link) })
	return nil
}

// CheckResetToken returns the id of the user token belongs to while it is
// still valid.
func (s *AuthService) CheckResetToken(ctx context.Context, token string) (string, error) {
	u, err := s.users.FindByResetToken(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", apperr.ErrTokenExpired
	}
	if err != nil {
		return "", err
	}
	if !u.ResetTokenValid(token, s.now()) {
		return "", apperr.ErrTokenExpired
	}
	return u.ID, nil
}

// ResetPassword sets a new password and burns the token.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return &apperr.ValidationError{Fields: errs}
	}

	u, err := s.users.FindByID(ctx, in.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrTokenExpired
	}
	if err != nil {
		return err
	}
	if !u.ResetTokenValid(in.Token, s.now()) {
		return apperr.ErrTokenExpired
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("reset: hash password: %w", err)
	}
	u.Password = hash
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	return s.users.Update(ctx, &u)
}

// User loads the account behind a session or token.
func (s *AuthService) User(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

// queue dispatches a mail job. Mail is best effort: failures are logged and
// never fail the request.
func (s *AuthService) queue(ctx context.Context, build func() (queue.Job, error)) {
	if s.jobs == nil {
		return
	}
	job, err := build()
	if err == nil {
		err = s.jobs.Dispatch(ctx, job)
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("mail job not queued", "error", err)
	}
}
