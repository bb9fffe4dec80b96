package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lexflow/statrev/internal/models"
	"github.com/lexflow/statrev/internal/review"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Statute diffs ---

func (s *SQLiteStore) SaveDiff(ctx context.Context, d *models.StatuteDiff) error {
	if d.ID == "" {
		d.ID = newULID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	changes, err := json.Marshal(d.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	notes, err := json.Marshal(d.Impact.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO statute_diffs (id, statute_id, version_info, changes, severity, affects_eligibility, affects_outcome, discretion_changed, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.StatuteID, d.VersionInfo, string(changes), d.Impact.Severity.String(),
		boolToInt(d.Impact.AffectsEligibility), boolToInt(d.Impact.AffectsOutcome),
		boolToInt(d.Impact.DiscretionChanged), string(notes), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert diff: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDiff(ctx context.Context, id string) (*models.StatuteDiff, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, statute_id, version_info, changes, severity, affects_eligibility, affects_outcome, discretion_changed, notes, created_at
		FROM statute_diffs WHERE id = ?`, id)

	d, err := scanDiff(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("diff not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get diff: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) ListDiffsByStatute(ctx context.Context, statuteID string) ([]*models.StatuteDiff, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, statute_id, version_info, changes, severity, affects_eligibility, affects_outcome, discretion_changed, notes, created_at
		FROM statute_diffs WHERE statute_id = ? ORDER BY created_at ASC, id ASC`, statuteID)
	if err != nil {
		return nil, fmt.Errorf("list diffs: %w", err)
	}
	defer rows.Close()

	var diffs []*models.StatuteDiff
	for rows.Next() {
		d, err := scanDiff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diff: %w", err)
		}
		diffs = append(diffs, d)
	}
	return diffs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiff(row rowScanner) (*models.StatuteDiff, error) {
	var d models.StatuteDiff
	var changes, severity, notes string
	var eligibility, outcome, discretion int

	err := row.Scan(&d.ID, &d.StatuteID, &d.VersionInfo, &changes, &severity,
		&eligibility, &outcome, &discretion, &notes, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(changes), &d.Changes); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	if err := json.Unmarshal([]byte(notes), &d.Impact.Notes); err != nil {
		return nil, fmt.Errorf("unmarshal notes: %w", err)
	}
	d.Impact.Severity = models.ParseSeverity(severity)
	d.Impact.AffectsEligibility = eligibility != 0
	d.Impact.AffectsOutcome = outcome != 0
	d.Impact.DiscretionChanged = discretion != 0
	return &d, nil
}

// --- Review sessions ---

func (s *SQLiteStore) CreateReviewSession(ctx context.Context, sess *review.Session) error {
	diff, participants, comments, annotations, err := marshalSession(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO review_sessions (id, statute_id, state, diff, participants, comments, annotations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Diff.StatuteID, string(sess.State), diff, participants, comments, annotations,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetReviewSession(ctx context.Context, id string) (*review.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, state, diff, participants, comments, annotations, created_at, updated_at
		FROM review_sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) UpdateReviewSession(ctx context.Context, sess *review.Session) error {
	diff, participants, comments, annotations, err := marshalSession(sess)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE review_sessions SET state = ?, diff = ?, participants = ?, comments = ?, annotations = ?, updated_at = ?
		WHERE id = ?`,
		string(sess.State), diff, participants, comments, annotations, sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update review session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("review session not found: %s", sess.ID)
	}
	return nil
}

func (s *SQLiteStore) ListReviewSessions(ctx context.Context, filter SessionListFilter) ([]*review.Session, error) {
	query := `SELECT id, state, diff, participants, comments, annotations, created_at, updated_at
		FROM review_sessions WHERE 1=1`
	var args []any
	if filter.StatuteID != "" {
		query += " AND statute_id = ?"
		args = append(args, filter.StatuteID)
	}
	if filter.State != "" {
		query += " AND state = ?"
		args = append(args, string(filter.State))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*review.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func marshalSession(sess *review.Session) (diff, participants, comments, annotations string, err error) {
	d, err := json.Marshal(sess.Diff)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal diff: %w", err)
	}
	p, err := json.Marshal(sess.Participants)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal participants: %w", err)
	}
	c, err := json.Marshal(sess.Comments)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal comments: %w", err)
	}
	a, err := json.Marshal(sess.Annotations)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal annotations: %w", err)
	}
	return string(d), string(p), string(c), string(a), nil
}

func scanSession(row rowScanner) (*review.Session, error) {
	sess := &review.Session{}
	var state, diff, participants, comments, annotations string

	err := row.Scan(&sess.ID, &state, &diff, &participants, &comments, &annotations,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sess.State = review.State(state)
	if err := json.Unmarshal([]byte(diff), &sess.Diff); err != nil {
		return nil, fmt.Errorf("unmarshal diff: %w", err)
	}
	if err := json.Unmarshal([]byte(participants), &sess.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	if err := json.Unmarshal([]byte(comments), &sess.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	if err := json.Unmarshal([]byte(annotations), &sess.Annotations); err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}
	return sess, nil
}

// --- Notifications ---

func (s *SQLiteStore) SaveNotification(ctx context.Context, n review.Notification) error {
	if n.ID == "" {
		n.ID = newULID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient, type, session_id, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Recipient, string(n.Type), n.SessionID, n.Message, boolToInt(n.Read), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]review.Notification, error) {
	query := `SELECT id, recipient, type, session_id, message, is_read, created_at
		FROM notifications WHERE recipient = ?`
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []review.Notification
	for rows.Next() {
		var n review.Notification
		var typ string
		var isRead int
		if err := rows.Scan(&n.ID, &n.Recipient, &typ, &n.SessionID, &n.Message, &isRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = review.NotificationType(typ)
		n.Read = isRead != 0
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient = ?`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
