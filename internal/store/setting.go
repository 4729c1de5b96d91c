package store

import (
	"database/sql"
	"errors"
)

// KeyActivePreset holds the ID of the preset applied at startup.
const KeyActivePreset = "active_preset"

// SettingRepository provides access to key-value settings.
type SettingRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Missing keys are not an error.
func (r *SettingRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// SetActivePreset marks the preset with id as active.
func (s *Store) SetActivePreset(id string) error {
	if _, err := s.Presets().GetByID(id); err != nil {
		return err
	}
	return s.Settings().Set(KeyActivePreset, id)
}

// ActivePreset returns the active preset.
// Returns nil, nil if no preset is active.
func (s *Store) ActivePreset() (*Preset, error) {
	id, err := s.Settings().Get(KeyActivePreset)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	p, err := s.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // Silent skip - stale selection
		}
		return nil, err
	}
	return p, nil
}
