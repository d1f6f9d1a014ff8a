package storage

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/team-calendar/backend/internal/storage/models"
)

// Seed is initial data loaded from a YAML file.
type Seed struct {
	Users []SeedUser `yaml:"users"`
	Rooms []SeedRoom `yaml:"rooms"`
}

// SeedUser is a user account to create if missing.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SeedRoom is a room to create if missing.
type SeedRoom struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// PasswordHasher turns a plain password into its stored hash.
type PasswordHasher func(password string) (string, error)

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	for _, u := range seed.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %q needs a username and password", u.Username)
		}
	}
	for _, r := range seed.Rooms {
		if r.Name == "" || r.Capacity < 1 {
			return nil, fmt.Errorf("seed room %q needs a name and a capacity of at least 1", r.Name)
		}
	}

	return &seed, nil
}

// Apply creates the seeded users and rooms that do not exist yet. Existing
// records with the same username or room name are left untouched.
func (s *Seed) Apply(ctx context.Context, users *UserRepository, rooms *RoomRepository, hash PasswordHasher, logger *zap.Logger) error {
	for _, u := range s.Users {
		existing, err := users.GetByUsername(ctx, u.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		passwordHash, err := hash(u.Password)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", u.Username, err)
		}
		if err := users.Create(ctx, &models.User{Username: u.Username, PasswordHash: passwordHash}); err != nil {
			return err
		}
		logger.Info("seeded user", zap.String("username", u.Username))
	}

	for _, r := range s.Rooms {
		existing, err := rooms.GetByName(ctx, r.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		if err := rooms.Create(ctx, &models.Room{Name: r.Name, Capacity: r.Capacity}); err != nil {
			return err
		}
		logger.Info("seeded room", zap.String("name", r.Name))
	}

	return nil
}
