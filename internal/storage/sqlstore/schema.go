package sqlstore

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS channels (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id   INTEGER NOT NULL,
    channel_id TEXT    NOT NULL,
    name       TEXT    NOT NULL DEFAULT '',
    caption    TEXT    NOT NULL DEFAULT '',
    logo       BLOB,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (owner_id, channel_id)
);

CREATE TABLE IF NOT EXISTS songs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id      INTEGER NOT NULL,
    channel_db_id INTEGER NOT NULL,
    title         TEXT    NOT NULL DEFAULT '',
    file_name     TEXT    NOT NULL DEFAULT '',
    published_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id     TEXT NOT NULL,
    event_type   TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    payload      BLOB NOT NULL,
    occurred_at  TIMESTAMP NOT NULL,
    processed_at TIMESTAMP
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS channels (
    id         BIGSERIAL PRIMARY KEY,
    owner_id   BIGINT  NOT NULL,
    channel_id TEXT    NOT NULL,
    name       TEXT    NOT NULL DEFAULT '',
    caption    TEXT    NOT NULL DEFAULT '',
    logo       BYTEA,
    is_default BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    UNIQUE (owner_id, channel_id)
);

CREATE TABLE IF NOT EXISTS songs (
    id            BIGSERIAL PRIMARY KEY,
    owner_id      BIGINT NOT NULL,
    channel_db_id BIGINT NOT NULL,
    title         TEXT   NOT NULL DEFAULT '',
    file_name     TEXT   NOT NULL DEFAULT '',
    published_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox (
    id           BIGSERIAL PRIMARY KEY,
    event_id     TEXT  NOT NULL,
    event_type   TEXT  NOT NULL,
    aggregate_id TEXT  NOT NULL,
    payload      JSONB NOT NULL,
    occurred_at  TIMESTAMPTZ NOT NULL,
    processed_at TIMESTAMPTZ
);
`
