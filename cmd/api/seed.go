package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type seedFile struct {
	Hotels []models.Hotel `yaml:"hotels"`
	Rooms  []models.Room  `yaml:"rooms"`
	Users  []models.User  `yaml:"users"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// seedDirectory inserts the hotels, rooms and users from path. Records that
// already exist are skipped, so restarts are harmless.
func seedDirectory(ctx context.Context, path string, dir domain.RoomDirectory, logger *zerolog.Logger) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("seed_path", path).Msg("seed file not found, skipping")
		return nil
	}

	seed, err := loadSeed(path)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", path).Msg("load seed")
		return err
	}

	var created int
	for i := range seed.Hotels {
		ok, err := skipExisting(dir.CreateHotel(ctx, &seed.Hotels[i]))
		if err != nil {
			return fmt.Errorf("seed hotel %s: %w", seed.Hotels[i].ID, err)
		}
		if ok {
			created++
		}
	}
	for i := range seed.Rooms {
		ok, err := skipExisting(dir.CreateRoom(ctx, &seed.Rooms[i]))
		if err != nil {
			return fmt.Errorf("seed room %s: %w", seed.Rooms[i].ID, err)
		}
		if ok {
			created++
		}
	}
	for i := range seed.Users {
		ok, err := skipExisting(dir.CreateUser(ctx, &seed.Users[i]))
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Users[i].ID, err)
		}
		if ok {
			created++
		}
	}

	logger.Info().
		Int("hotels", len(seed.Hotels)).
		Int("rooms", len(seed.Rooms)).
		Int("users", len(seed.Users)).
		Int("created", created).
		Msg("directory seeded")
	return nil
}

func skipExisting(err error) (bool, error) {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}
