package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NicklasAaStadler/booking/internal/booking"
)

var ErrNoRowReturned = errors.New("insert returned no row")

// DB is the subset of pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Repository inserts bookings into the remote session table
type Repository struct {
	db    DB
	table string
}

// NewRepository creates a new repository; an empty table means DefaultTable
func NewRepository(db DB, table string) *Repository {
	if table == "" {
		table = DefaultTable
	}
	return &Repository{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// InsertBooking inserts one record and returns the row as stored.
// Errors raised by Postgres are reported as *booking.RejectedError.
func (r *Repository) InsertBooking(ctx context.Context, rec booking.Record) ([]booking.InsertedRow, error) {
	endsAt, err := time.Parse(booking.EndsAtLayout, rec.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ends_at %q: %w", rec.EndsAt, err)
	}

	participants := rec.Participants
	if participants == nil {
		participants = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, r.table, insertColumns, returningColumns)

	var row booking.InsertedRow
	err = r.db.QueryRow(ctx, query,
		rec.RoomID, endsAt, rec.ParticipationCount, rec.BookedBy, participants,
	).Scan(
		&row.ID, &row.CreatedAt, &row.RoomID, &row.EndsAt,
		&row.ParticipationCount, &row.BookedBy, &row.Participants,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRowReturned
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, fmt.Errorf("failed to insert booking: %w", &booking.RejectedError{
				Code:    pgErr.Code,
				Message: pgErr.Message,
			})
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	return []booking.InsertedRow{row}, nil
}

// EnsureSchema creates the session table when it does not exist yet
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, fmt.Sprintf(schemaTemplate, r.table)); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.table, err)
	}
	return nil
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
