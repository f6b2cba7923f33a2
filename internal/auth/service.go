package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Reserved demo accounts; public registration with these addresses is refused.
const (
	adminEmail      = "admin@biterush.com"
	superAdminEmail = "superadmin@biterush.com"
	vendorEmail     = "vendor@biterush.com"
)

const bcryptCost = 10

var emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

var ErrNotFound = errors.New("user not found")

// Repo is the account document store.
type Repo interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Insert(ctx context.Context, u *User) error
}

type Service struct {
	Repo     Repo
	Sessions *SessionStore
}

// Register validates the form, hashes the password and creates a user with
// the default role. The returned Result never carries the hash.
func (s *Service) Register(ctx context.Context, username, email, password string) Result {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < 3 || len(username) > 20 {
		return Result{Error: "Username must be between 3 and 20 characters."}
	}
	if !emailRe.MatchString(email) {
		return Result{Error: "Invalid email address."}
	}
	if len(password) < 6 {
		return Result{Error: "Password must be at least 6 characters."}
	}
	if email == adminEmail || email == superAdminEmail || email == vendorEmail {
		return Result{Error: "This email address is reserved."}
	}

	if existing, err := s.Repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return Result{Error: fmt.Sprintf("Email (%s) already exists.", email)}
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("register lookup: %v", err)
		return Result{Error: "An unexpected server error occurred during registration."}
	}
	if existing, err := s.Repo.FindByUsername(ctx, username); err == nil && existing != nil {
		return Result{Error: fmt.Sprintf("Username (%s) already exists.", username)}
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("register lookup: %v", err)
		return Result{Error: "An unexpected server error occurred during registration."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Printf("register hash: %v", err)
		return Result{Error: "An unexpected server error occurred during registration."}
	}

	now := time.Now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Insert(ctx, u); err != nil {
		log.Printf("register insert: %v", err)
		return Result{Error: "Email or username already taken."}
	}

	p := u.Profile()
	return Result{Success: true, User: &p}
}

// Login verifies credentials. The failure message is intentionally identical
// for unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) || len(password) < 6 {
		return Result{Error: "Invalid input data."}
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{Error: "Invalid email or password."}
		}
		log.Printf("login lookup: %v", err)
		return Result{Error: "An unexpected server error occurred during login."}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Result{Error: "Invalid email or password."}
	}

	p := u.Profile()
	return Result{Success: true, User: &p}
}

// Seed creates the demo admin/super-admin/vendor accounts when missing.
func (s *Service) Seed(ctx context.Context) error {
	seeds := []struct {
		email, username, password string
		role                      Role
	}{
		{superAdminEmail, "SuperAdmin", "superpass", RoleSuperAdmin},
		{adminEmail, "AdminUser", "adminpass", RoleAdmin},
		{vendorEmail, "VendorUser", "vendorpass", RoleVendor},
	}
	for _, sd := range seeds {
		if _, err := s.Repo.FindByEmail(ctx, sd.email); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(sd.password), bcryptCost)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		u := &User{
			ID:           uuid.NewString(),
			Username:     sd.username,
			Email:        sd.email,
			PasswordHash: string(hash),
			Role:         sd.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.Repo.Insert(ctx, u); err != nil {
			return err
		}
		log.Printf("seeded user %s role=%s", sd.email, sd.role)
	}
	return nil
}
