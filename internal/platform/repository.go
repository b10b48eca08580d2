package platform

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/database"
)

// SelectRecord is the persisted registration of a select entity.
type SelectRecord struct {
	UniqueID       string
	DeviceID       string
	DeviceCategory string
	Key            string
	Name           string
	EntityCategory EntityCategory
	Icon           string
	TranslationKey string
	Options        []string
	Enabled        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Repository persists select registrations.
type Repository interface {
	// Upsert inserts rec or refreshes an existing row. An existing row keeps
	// its enabled flag; the stored record is returned.
	Upsert(ctx context.Context, rec SelectRecord) (SelectRecord, error)

	// Get returns ErrEntityNotFound when no row matches.
	Get(ctx context.Context, uniqueID string) (SelectRecord, error)

	List(ctx context.Context) ([]SelectRecord, error)

	// SetEnabled returns ErrEntityNotFound when no row matches.
	SetEnabled(ctx context.Context, uniqueID string, enabled bool) error

	// DeleteByDevice removes every row of deviceID and returns the count.
	DeleteByDevice(ctx context.Context, deviceID string) (int64, error)
}

// SQLiteRepository implements Repository on the select_entities table.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `unique_id, device_id, category, dp_code, name, entity_category,
	icon, translation_key, options, enabled, created_at, updated_at`

// Upsert inserts or refreshes a registration.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec SelectRecord) (SelectRecord, error) {
	options, err := json.Marshal(nonNil(rec.Options))
	if err != nil {
		return SelectRecord{}, fmt.Errorf("marshalling options: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var stored SelectRecord
	err = r.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO select_entities (`+selectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(unique_id) DO UPDATE SET
				device_id = excluded.device_id,
				category = excluded.category,
				dp_code = excluded.dp_code,
				name = excluded.name,
				entity_category = excluded.entity_category,
				icon = excluded.icon,
				translation_key = excluded.translation_key,
				options = excluded.options,
				updated_at = excluded.updated_at`,
			rec.UniqueID, rec.DeviceID, rec.DeviceCategory, rec.Key, rec.Name,
			string(rec.EntityCategory), rec.Icon, rec.TranslationKey, string(options),
			boolToInt(rec.Enabled), now, now,
		)
		if err != nil {
			return fmt.Errorf("upserting select %s: %w", rec.UniqueID, err)
		}

		row := tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM select_entities WHERE unique_id = ?`, rec.UniqueID)
		stored, err = scanRecord(row)
		return err
	})
	if err != nil {
		return SelectRecord{}, err
	}
	return stored, nil
}

// Get returns one registration.
func (r *SQLiteRepository) Get(ctx context.Context, uniqueID string) (SelectRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM select_entities WHERE unique_id = ?`, uniqueID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SelectRecord{}, ErrEntityNotFound
	}
	if err != nil {
		return SelectRecord{}, fmt.Errorf("querying select %s: %w", uniqueID, err)
	}
	return rec, nil
}

// List returns every registration ordered by device then unique id.
func (r *SQLiteRepository) List(ctx context.Context) ([]SelectRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM select_entities ORDER BY device_id, unique_id`)
	if err != nil {
		return nil, fmt.Errorf("querying selects: %w", err)
	}
	defer rows.Close()

	var records []SelectRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating selects: %w", err)
	}
	return records, nil
}

// SetEnabled stores the operator's enabled choice.
func (r *SQLiteRepository) SetEnabled(ctx context.Context, uniqueID string, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE select_entities SET enabled = ?, updated_at = ? WHERE unique_id = ?`,
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339), uniqueID,
	)
	if err != nil {
		return fmt.Errorf("updating select %s: %w", uniqueID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// DeleteByDevice removes every registration of a device.
func (r *SQLiteRepository) DeleteByDevice(ctx context.Context, deviceID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM select_entities WHERE device_id = ?`, deviceID)
	if err != nil {
		return 0, fmt.Errorf("deleting selects of %s: %w", deviceID, err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (SelectRecord, error) {
	var (
		rec                  SelectRecord
		entityCategory       string
		options              string
		enabled              int
		createdAt, updatedAt string
	)
	err := row.Scan(&rec.UniqueID, &rec.DeviceID, &rec.DeviceCategory, &rec.Key, &rec.Name,
		&entityCategory, &rec.Icon, &rec.TranslationKey, &options, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return SelectRecord{}, err
	}

	rec.EntityCategory = EntityCategory(entityCategory)
	rec.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
		return SelectRecord{}, fmt.Errorf("decoding options of %s: %w", rec.UniqueID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // written by us
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // written by us
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
