// Package seed loads bootstrap identities from a YAML file at startup.
//
//	users:
//	  - username: root
//	    secret: change-me
//	    role: admin
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// Registrar creates identities with an explicit role.
type Registrar interface {
	Bootstrap(ctx context.Context, username, secret string, role domain.Role) (*domain.Identity, error)
}

type usersFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Secret   string `yaml:"secret"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// FromFile registers every user listed in path. Existing usernames are left untouched.
// It returns the number of identities created.
func FromFile(ctx context.Context, path string, reg Registrar, log zerolog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return FromYAML(ctx, data, reg, log)
}

// FromYAML is FromFile over an in-memory document.
func FromYAML(ctx context.Context, data []byte, reg Registrar, log zerolog.Logger) (int, error) {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for i, u := range uf.Users {
		roleName := u.Role
		if roleName == "" {
			roleName = string(domain.RoleStandard)
		}
		role, err := domain.ParseRole(roleName)
		if err != nil {
			return created, fmt.Errorf("seed user %d: %w", i, err)
		}

		if _, err := reg.Bootstrap(ctx, u.Username, u.Secret, role); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				log.Debug().Str("username", u.Username).Msg("seed user already exists")
				continue
			}
			return created, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		created++
		log.Info().Str("username", u.Username).Str("role", string(role)).Msg("seed user created")
	}
	return created, nil
}
