package service

import (
	"context"
	"errors"
	"strings"

	"localchef-api/models"
	"localchef-api/store"
)

type CreateUserInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	UID   string `json:"uid"`
}

// Users manages the user directory. Roles only change through RoleWorkflow.
type Users struct {
	users *store.Users
	deps  Deps
}

func NewUsers(s *store.Store, deps Deps) *Users {
	deps = deps.withDefaults()
	deps.Log = deps.Log.Named("users")
	return &Users{users: s.Users, deps: deps}
}

// Create registers a user with the default role. An existing email returns the
// stored user and created=false.
func (u *Users) Create(ctx context.Context, in CreateUserInput) (*models.User, bool, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, false, missing("email")
	}

	existing, err := u.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, storeErr("lookup user", err)
	}

	user := &models.User{
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		UID:       strings.TrimSpace(in.UID),
		Role:      models.RoleUser,
		CreatedAt: u.deps.Now(),
	}
	err = u.users.Create(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// registered concurrently since the lookup
		existing, err := u.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, storeErr("lookup user", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, storeErr("create user", err)
	}
	return user, true, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := u.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("user", email)
	}
	if err != nil {
		return nil, storeErr("lookup user", err)
	}
	return user, nil
}

// GetRole returns the stored role of email. Callers may only read their own.
func (u *Users) GetRole(ctx context.Context, caller models.Identity, email string) (models.UserRole, error) {
	if caller.Email == "" {
		return "", ErrUnauthenticated
	}
	if !strings.EqualFold(caller.Email, strings.TrimSpace(email)) {
		return "", ErrForbidden
	}
	user, err := u.ByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// List returns every user, optionally only those with role
func (u *Users) List(ctx context.Context, role string) ([]models.User, error) {
	r := models.UserRole(role)
	if role != "" && !r.Valid() {
		return nil, invalid("role", "must be one of user, chef, admin")
	}
	users, err := u.users.List(ctx, r)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}
