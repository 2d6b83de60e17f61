package store

// Timestamps are stored as Unix seconds; zero means unset.
const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id                  TEXT PRIMARY KEY,
	learner_id          TEXT NOT NULL,
	item_id             TEXT NOT NULL,
	algorithm           TEXT NOT NULL,
	scheduled_at        INTEGER NOT NULL,
	last_review_at      INTEGER NOT NULL DEFAULT 0,
	interval_days       INTEGER NOT NULL DEFAULT 0,
	ease_factor         REAL NOT NULL DEFAULT 2.5,
	consecutive_correct INTEGER NOT NULL DEFAULT 0,
	consecutive_lapses  INTEGER NOT NULL DEFAULT 0,
	stability           REAL NOT NULL DEFAULT 0,
	difficulty          REAL NOT NULL DEFAULT 0,
	memory_snapshot     BLOB,
	mastery             TEXT NOT NULL DEFAULT 'learning',
	is_leech            INTEGER NOT NULL DEFAULT 0,
	total_reviews       INTEGER NOT NULL DEFAULT 0,
	total_correct       INTEGER NOT NULL DEFAULT 0,
	version             INTEGER NOT NULL DEFAULT 1,
	created_at          INTEGER NOT NULL,
	updated_at          INTEGER NOT NULL,
	UNIQUE (learner_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_cards_due ON cards (learner_id, scheduled_at);

CREATE TABLE IF NOT EXISTS review_events (
	id                TEXT PRIMARY KEY,
	card_id           TEXT NOT NULL REFERENCES cards (id),
	rating            INTEGER NOT NULL,
	latency_ms        INTEGER NOT NULL DEFAULT 0,
	elapsed_days      REAL NOT NULL DEFAULT 0,
	retained          INTEGER NOT NULL,
	interval_before   INTEGER NOT NULL DEFAULT 0,
	interval_after    INTEGER NOT NULL DEFAULT 0,
	ease_before       REAL NOT NULL DEFAULT 0,
	ease_after        REAL NOT NULL DEFAULT 0,
	stability_before  REAL NOT NULL DEFAULT 0,
	stability_after   REAL NOT NULL DEFAULT 0,
	difficulty_before REAL NOT NULL DEFAULT 0,
	difficulty_after  REAL NOT NULL DEFAULT 0,
	created_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_events_card ON review_events (card_id, created_at);

CREATE TABLE IF NOT EXISTS items (
	id            TEXT PRIMARY KEY,
	concept_id    TEXT NOT NULL,
	question      TEXT NOT NULL,
	options       TEXT NOT NULL,
	correct_index INTEGER NOT NULL,
	explanation   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_items_concept ON items (concept_id);

CREATE TABLE IF NOT EXISTS item_stats (
	item_id        TEXT PRIMARY KEY REFERENCES items (id),
	attempts       INTEGER NOT NULL DEFAULT 0,
	correct        INTEGER NOT NULL DEFAULT 0,
	difficulty     REAL NOT NULL DEFAULT 0.5,
	discrimination REAL NOT NULL DEFAULT 0,
	option_counts  TEXT NOT NULL DEFAULT '[]',
	flagged        INTEGER NOT NULL DEFAULT 0,
	flag_reason    TEXT NOT NULL DEFAULT '',
	updated_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS item_attempts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id    TEXT NOT NULL,
	ability    REAL NOT NULL,
	correct    INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_item_attempts_item ON item_attempts (item_id, id);

CREATE TABLE IF NOT EXISTS abilities (
	learner_id TEXT NOT NULL,
	concept_id TEXT NOT NULL,
	ability    REAL NOT NULL,
	attempts   INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (learner_id, concept_id)
);

CREATE TABLE IF NOT EXISTS assignments (
	learner_id   TEXT PRIMARY KEY,
	algorithm    TEXT NOT NULL,
	reason       TEXT NOT NULL,
	review_count INTEGER NOT NULL DEFAULT 0,
	migrated_at  INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);
`
