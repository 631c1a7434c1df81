package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/controller"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/macutil"
)

type DB struct {
	*sql.DB
}

// Controller is a stored appliance registration: the connection record the
// integration client consumes plus dashboard metadata.
type Controller struct {
	controller.Record
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Initialize(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS controllers (
		id TEXT PRIMARY KEY,
		name TEXT,
		ip TEXT NOT NULL,
		port INTEGER NOT NULL,
		api_key TEXT,
		username TEXT,
		password TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS banned_macs (
		controller_id TEXT NOT NULL,
		site_id TEXT NOT NULL,
		mac TEXT NOT NULL,
		banned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (controller_id, site_id, mac)
	);

	CREATE INDEX IF NOT EXISTS idx_banned_macs_controller ON banned_macs(controller_id, site_id);
	`

	_, err := db.Exec(schema)
	return err
}

// CreateController stores a new appliance registration, generating an id
// when the caller supplies none.
func (db *DB) CreateController(c *Controller) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO controllers (id, name, ip, port, api_key, username, password)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, c.ID, c.Name, c.IP, c.Port, c.APIKey, c.Username, c.Password)
	return err
}

// UpdateController overwrites a stored registration.
func (db *DB) UpdateController(c *Controller) error {
	query := `
		UPDATE controllers
		SET name = ?, ip = ?, port = ?, api_key = ?, username = ?, password = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := db.Exec(query, c.Name, c.IP, c.Port, c.APIKey, c.Username, c.Password, c.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteController removes a registration and its ban entries.
func (db *DB) DeleteController(id string) error {
	if _, err := db.Exec(`DELETE FROM banned_macs WHERE controller_id = ?`, id); err != nil {
		return err
	}
	_, err := db.Exec(`DELETE FROM controllers WHERE id = ?`, id)
	return err
}

// ListControllers returns every stored registration.
func (db *DB) ListControllers() ([]Controller, error) {
	query := `
		SELECT id, COALESCE(name, ''), ip, port,
		       COALESCE(api_key, ''), COALESCE(username, ''), COALESCE(password, ''),
		       created_at, updated_at
		FROM controllers
		ORDER BY created_at
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var controllers []Controller
	for rows.Next() {
		var c Controller
		err := rows.Scan(&c.ID, &c.Name, &c.IP, &c.Port, &c.APIKey, &c.Username, &c.Password,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// FindController returns a full stored registration, nil when absent.
func (db *DB) FindController(id string) (*Controller, error) {
	query := `
		SELECT id, COALESCE(name, ''), ip, port,
		       COALESCE(api_key, ''), COALESCE(username, ''), COALESCE(password, ''),
		       created_at, updated_at
		FROM controllers
		WHERE id = ?
	`
	var c Controller
	err := db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.IP, &c.Port,
		&c.APIKey, &c.Username, &c.Password, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetController returns the connection record the integration client needs,
// nil when the id is unknown.
func (db *DB) GetController(id string) (*controller.Record, error) {
	c, err := db.FindController(id)
	if err != nil || c == nil {
		return nil, err
	}
	rec := c.Record
	return &rec, nil
}

// AddBan records a blocked MAC for a controller site. Idempotent.
func (db *DB) AddBan(controllerID, siteID, mac string) error {
	query := `
		INSERT INTO banned_macs (controller_id, site_id, mac)
		VALUES (?, ?, ?)
		ON CONFLICT(controller_id, site_id, mac) DO NOTHING
	`
	_, err := db.Exec(query, controllerID, siteID, macutil.Normalize(mac))
	return err
}

// RemoveBan clears a blocked MAC.
func (db *DB) RemoveBan(controllerID, siteID, mac string) error {
	query := `DELETE FROM banned_macs WHERE controller_id = ? AND site_id = ? AND mac = ?`
	_, err := db.Exec(query, controllerID, siteID, macutil.Normalize(mac))
	return err
}

// ListBannedMacs returns the locally tracked ban list for a controller site.
func (db *DB) ListBannedMacs(controllerID, siteID string) (map[string]bool, error) {
	query := `SELECT mac FROM banned_macs WHERE controller_id = ? AND site_id = ?`
	rows, err := db.Query(query, controllerID, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banned := make(map[string]bool)
	for rows.Next() {
		var mac string
		if err := rows.Scan(&mac); err != nil {
			return nil, err
		}
		banned[mac] = true
	}

	return banned, rows.Err()
}
