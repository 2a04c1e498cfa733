// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AdminSeed is one admin to create or refresh.
type AdminSeed struct {
	Name     string `yaml:"name" json:"name"`
	Email    string `yaml:"email" json:"email"`
	Password string `yaml:"password" json:"password"`
	Role     string `yaml:"role" json:"role"`
}

// AdminResult reports what happened to one seed.
type AdminResult struct {
	Email  string `json:"email"`
	Status string `json:"status"` // Created, Updated
	Role   string `json:"role"`
}

// adminsFile is the YAML layout of the seed file:
//
//	admins:
//	  - name: Ops
//	    email: ops@eventhub.in
//	    password: ...
//	    role: super_admin
type adminsFile struct {
	Admins []AdminSeed `yaml:"admins"`
}

// LoadAdminsFile reads admin seeds from a YAML file.
func LoadAdminsFile(path string) ([]AdminSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read admin seed file: %w", err)
	}
	var f adminsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse admin seed file %s: %w", path, err)
	}
	return f.Admins, nil
}

// InvalidSeedError reports a seed rejected before touching the store.
type InvalidSeedError struct {
	Index int
	Err   error
}

func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("admin seed %d: %v", e.Index, e.Err)
}

func (e *InvalidSeedError) Unwrap() error { return e.Err }

// check normalises s in place and reports the first problem.
func (s *AdminSeed) check() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Role = strings.TrimSpace(s.Role)
	if s.Role == "" {
		s.Role = models.AdminRoleSuperAdmin
	}
	if s.Name == "" {
		s.Name = "Admin"
	}
	switch {
	case s.Email == "" || s.Password == "":
		return errors.New("email and password are required")
	case !authutil.ValidEmail(s.Email):
		return fmt.Errorf("invalid email %q", s.Email)
	case !models.IsValidAdminRole(s.Role):
		return fmt.Errorf("invalid role %q", s.Role)
	}
	return nil
}

// Admins upserts every seed by email. Existing admins get the new password
// hash, name and role; missing ones are created with default permissions.
// It stops at the first invalid seed or store failure.
func Admins(ctx context.Context, store *adminstore.Store, seeds []AdminSeed, logger *zap.Logger) ([]AdminResult, error) {
	results := make([]AdminResult, 0, len(seeds))
	for i := range seeds {
		s := seeds[i]
		if err := s.check(); err != nil {
			return results, &InvalidSeedError{Index: i, Err: err}
		}
		hash, err := authutil.HashPassword(s.Password)
		if err != nil {
			return results, fmt.Errorf("hash password for %s: %w", s.Email, err)
		}
		status, err := store.UpsertByEmail(ctx, s.Name, s.Email, s.Role, hash)
		if err != nil {
			logger.Error("failed to seed admin", zap.String("email", s.Email), zap.Error(err))
			return results, err
		}
		logger.Info("seeded admin",
			zap.String("email", strings.ToLower(s.Email)),
			zap.String("role", s.Role),
			zap.String("status", status))
		results = append(results, AdminResult{Email: strings.ToLower(s.Email), Status: status, Role: s.Role})
	}
	return results, nil
}
