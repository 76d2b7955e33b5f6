package infra

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/proctorhq/proctord/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const (
	auditDBName  = "audit.db"
	auditKeyName = ".key"
	auditKeySize = 32 // 256-bit
)

// EncryptedAuditStore implements domain.AlertSink on a SQLCipher encrypted
// SQLite database. The store is local evidence only; remote delivery is a
// different sink.
type EncryptedAuditStore struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedAuditStore opens (or creates) the encrypted audit database
// under dataDir, generating the key file on first use.
func NewEncryptedAuditStore(dataDir string) (*EncryptedAuditStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	key, err := ensureAuditKey(dataDir)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, auditDBName)
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096",
		dbPath, hex.EncodeToString(key))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	store := &EncryptedAuditStore{db: db, dbPath: dbPath}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return store, nil
}

func (s *EncryptedAuditStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS violations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		violation_type TEXT NOT NULL,
		details TEXT NOT NULL,
		window_info TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_violations_session ON violations(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Emit stores one alert record.
func (s *EncryptedAuditStore) Emit(rec domain.AlertRecord) error {
	windowJSON, err := json.Marshal(rec.WindowInfo)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO violations (session_id, violation_type, details, window_info, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.ViolationType, rec.Details, string(windowJSON), rec.Timestamp,
	)
	return err
}

// BySession returns all stored records for a session, oldest first.
func (s *EncryptedAuditStore) BySession(sessionID string) ([]domain.AlertRecord, error) {
	rows, err := s.db.Query(`
		SELECT session_id, violation_type, details, window_info, created_at
		FROM violations WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		var windowJSON string
		if err := rows.Scan(&rec.SessionID, &rec.ViolationType, &rec.Details,
			&windowJSON, &rec.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(windowJSON), &rec.WindowInfo); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Path returns the database file path.
func (s *EncryptedAuditStore) Path() string {
	return s.dbPath
}

// Close releases the database connection.
func (s *EncryptedAuditStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ensureAuditKey loads the key file, generating it on first use.
// The key lives beside the database with 0600 permissions.
func ensureAuditKey(dataDir string) ([]byte, error) {
	keyPath := filepath.Join(dataDir, auditKeyName)

	if encoded, err := os.ReadFile(keyPath); err == nil {
		key, err := base64.StdEncoding.DecodeString(string(encoded))
		if err != nil {
			return nil, fmt.Errorf("decode audit key: %w", err)
		}
		if len(key) != auditKeySize {
			return nil, fmt.Errorf("invalid audit key size: got %d, want %d", len(key), auditKeySize)
		}
		return key, nil
	}

	key := make([]byte, auditKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate audit key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(keyPath, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("write audit key: %w", err)
	}
	return key, nil
}

// DefaultAuditDir returns the hidden per-user audit directory.
func DefaultAuditDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".proctord")
	}
	return filepath.Join(home, ".proctord")
}

// Ensure EncryptedAuditStore implements domain.AlertSink.
var _ domain.AlertSink = (*EncryptedAuditStore)(nil)
