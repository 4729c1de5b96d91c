package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a preset name is already taken.
	ErrDuplicateName = errors.New("duplicate name")
)

// Preset is a named set of theremin settings.
type Preset struct {
	ID             string
	Name           string
	Threshold      float64
	MinFrequency   float64
	MaxFrequency   float64
	MinGain        float64
	MaxGain        float64
	DebounceFrames int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PresetRepository provides CRUD operations for presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

const presetColumns = `id, name, threshold, min_frequency, max_frequency, min_gain, max_gain,
	debounce_frames, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (*Preset, error) {
	p := &Preset{}
	err := row.Scan(&p.ID, &p.Name, &p.Threshold, &p.MinFrequency, &p.MaxFrequency,
		&p.MinGain, &p.MaxGain, &p.DebounceFrames, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// uniqueViolation reports whether err came from a UNIQUE constraint.
func uniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new preset into the database.
func (r *PresetRepository) Create(p *Preset) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO presets (`+presetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Threshold, p.MinFrequency, p.MaxFrequency,
		p.MinGain, p.MaxGain, p.DebounceFrames, p.CreatedAt, p.UpdatedAt,
	)
	if uniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	p, err := scanPreset(r.db.QueryRow(
		`SELECT `+presetColumns+` FROM presets WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a preset by its name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	p, err := scanPreset(r.db.QueryRow(
		`SELECT `+presetColumns+` FROM presets WHERE name = ?`, name,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all presets ordered by name.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(`SELECT ` + presetColumns + ` FROM presets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

// Update updates an existing preset in the database.
func (r *PresetRepository) Update(p *Preset) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE presets SET name = ?, threshold = ?, min_frequency = ?, max_frequency = ?,
		 min_gain = ?, max_gain = ?, debounce_frames = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Threshold, p.MinFrequency, p.MaxFrequency,
		p.MinGain, p.MaxGain, p.DebounceFrames, p.UpdatedAt, p.ID,
	)
	if uniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a preset from the database by its ID.
// Deleting the active preset clears the active selection.
func (r *PresetRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, KeyActivePreset, id); err != nil {
		return err
	}

	return tx.Commit()
}
