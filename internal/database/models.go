package database

// DefaultTable is the remote table bookings are inserted into
const DefaultTable = "session-table"

const insertColumns = "room_id, ends_at, participation_, booked_by, participants"

const returningColumns = "id, created_at, room_id, ends_at, participation_, booked_by, participants"

// schemaTemplate mirrors the columns of the hosted table so a local
// Postgres can stand in for it. %s is the quoted table name.
const schemaTemplate = `
	CREATE TABLE IF NOT EXISTS %s (
		id              BIGSERIAL PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		room_id         TEXT NOT NULL,
		ends_at         TIMESTAMPTZ NOT NULL,
		participation_  INTEGER NOT NULL DEFAULT 0,
		booked_by       INTEGER NOT NULL DEFAULT 0,
		participants    TEXT[] NOT NULL DEFAULT '{}'
	)
`
