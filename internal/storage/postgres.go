package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	return NewPostgresStoreFromDSN(ctx, cfg.DSN(), cfg.MaxConns)
}

func NewPostgresStoreFromDSN(ctx context.Context, dsn string, maxConns int) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies every embedded migration not yet recorded in schema_migrations.
func (s *PostgresStore) Migrate(ctx context.Context) ([]string, error) {
	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := s.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan migration versions: %w", err)
	}
	for _, v := range versions {
		applied[v] = true
	}

	files, err := pendingMigrations(applied)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		content, err := migrationsFS.ReadFile("migrations/" + file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}

		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("execute migration %s: %w", file, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, file); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slog.Info("applied migration", "version", file)
	}
	return files, nil
}

// --- Clients ---

func (s *PostgresStore) CreateClient(ctx context.Context, name, logoURL string) (*models.Client, error) {
	c := &models.Client{
		ID:      uuid.New(),
		Name:    name,
		LogoURL: logoURL,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (id, name, logo_url) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		c.ID, c.Name, c.LogoURL,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return nil, fmt.Errorf("client %q: %w", name, models.ErrDuplicate)
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c := &models.Client{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, logo_url, created_at, updated_at FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, logo_url, created_at, updated_at FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// --- Attendees ---

func (s *PostgresStore) CreateAttendee(ctx context.Context, a *models.Attendee) error {
	a.ID = uuid.New()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO attendees (id, name, email, phone_number, profile_image)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Email, a.PhoneNumber, a.ProfileImage,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create attendee: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAttendee(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	a := &models.Attendee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone_number, profile_image, created_at, updated_at FROM attendees WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PhoneNumber, &a.ProfileImage, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

// ResolveProfileImage returns the attendee's profile image reference. A missing
// attendee and an attendee without a profile image both wrap models.ErrNotFound.
func (s *PostgresStore) ResolveProfileImage(ctx context.Context, attendeeID uuid.UUID) (string, error) {
	var ref string
	err := s.pool.QueryRow(ctx,
		`SELECT profile_image FROM attendees WHERE id = $1`, attendeeID,
	).Scan(&ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("attendee %s: %w", attendeeID, models.ErrNotFound)
		}
		return "", fmt.Errorf("resolve profile image: %w", err)
	}
	if ref == "" {
		return "", fmt.Errorf("attendee %s has no profile image: %w", attendeeID, models.ErrNotFound)
	}
	return ref, nil
}

// --- Events ---

const eventColumns = `id, name, start_date, end_date, client_id, event_collections, created_at, updated_at`

func (s *PostgresStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	if ev.Collections == nil {
		ev.Collections = []models.CollectionGroup{}
	}
	if err := models.ValidateCollectionGroups(ev.Collections); err != nil {
		return err
	}
	raw, err := json.Marshal(ev.Collections)
	if err != nil {
		return fmt.Errorf("encode event collections: %w", err)
	}

	ev.ID = uuid.New()
	err = s.pool.QueryRow(ctx,
		`INSERT INTO events (id, name, start_date, end_date, client_id, event_collections)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb) RETURNING created_at, updated_at`,
		ev.ID, ev.Name, ev.StartDate, ev.EndDate, ev.ClientID, string(raw),
	).Scan(&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		switch {
		case isPgCode(err, pgUniqueViolation):
			return fmt.Errorf("event %q: %w", ev.Name, models.ErrDuplicate)
		case isPgCode(err, pgForeignKeyViolation):
			return fmt.Errorf("client %s: %w", ev.ClientID, models.ErrNotFound)
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// ListEvents returns every event with its full collection tree, oldest first.
// A document with a malformed tree fails the whole scan.
func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// AppendCollectionGroup adds one collection group to the end of the event's tree.
func (s *PostgresStore) AppendCollectionGroup(ctx context.Context, eventID uuid.UUID, group models.CollectionGroup) error {
	if err := models.ValidateCollectionGroups([]models.CollectionGroup{group}); err != nil {
		return err
	}
	raw, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("encode collection group: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE events
		 SET event_collections = event_collections || jsonb_build_array($2::jsonb), updated_at = NOW()
		 WHERE id = $1`,
		eventID, string(raw))
	if err != nil {
		return fmt.Errorf("append collection group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", eventID, models.ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var (
		ev  models.Event
		raw []byte
	)
	if err := row.Scan(&ev.ID, &ev.Name, &ev.StartDate, &ev.EndDate, &ev.ClientID, &raw, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return nil, err
	}
	groups, err := models.DecodeCollectionGroups(raw)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	ev.Collections = groups
	return &ev, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
