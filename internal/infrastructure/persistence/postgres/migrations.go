// Package postgres implements PostgreSQL persistence layer for BotCamp Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

-- Enrolled students with their progression state. XP is level-relative:
-- the stored xp counts toward the next level only. Negative xp is a
-- valid state produced by negative awards; xp at or above the current
-- level threshold is not, and the application treats it as corruption.
CREATE TABLE IF NOT EXISTS students (
    guild_id BIGINT NOT NULL,
    id BIGINT NOT NULL,
    name VARCHAR(100) NOT NULL,
    nickname VARCHAR(100) NOT NULL DEFAULT '',
    lvl INTEGER NOT NULL DEFAULT 0,
    xp INTEGER NOT NULL DEFAULT 0,
    enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (guild_id, id),

    CONSTRAINT valid_lvl CHECK (lvl >= 0),
    CONSTRAINT valid_name CHECK (name <> '')
);

-- Ranking reads order by lvl, xp and a display name; the two partial
-- orders share this index prefix.
CREATE INDEX IF NOT EXISTS idx_students_ranking ON students(guild_id, lvl DESC, xp DESC);
`

const migration001Down = `
DROP INDEX IF EXISTS idx_students_ranking;
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE EVAL PAIRS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create eval_pairs table
-- Version: 002

-- Daily tester -> coder assignments. The insertion order is significant
-- for rendering, so the surrogate id doubles as the storage order.
CREATE TABLE IF NOT EXISTS eval_pairs (
    id BIGSERIAL PRIMARY KEY,
    guild_id BIGINT NOT NULL,
    day INTEGER NOT NULL,
    code INTEGER NOT NULL,
    coder_id BIGINT NOT NULL,
    tester_id BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_day CHECK (day >= 1),
    CONSTRAINT valid_code CHECK (code >= 0 AND code <= 9999),
    CONSTRAINT uq_eval_pairs_day_code UNIQUE (guild_id, day, code)
);

CREATE INDEX IF NOT EXISTS idx_eval_pairs_day ON eval_pairs(guild_id, day);
`

const migration002Down = `
DROP INDEX IF EXISTS idx_eval_pairs_day;
DROP TABLE IF EXISTS eval_pairs;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE COHORT SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create cohort_settings table
-- Version: 003

-- Per-guild cohort state. coc_msg_id is the initialization marker:
-- a non-null value means setup already ran and must not run again.
CREATE TABLE IF NOT EXISTS cohort_settings (
    guild_id BIGINT PRIMARY KEY,
    start_date DATE NOT NULL,
    coc_msg_id BIGINT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration003Down = `
DROP TABLE IF EXISTS cohort_settings;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create registry table
-- Version: 004

-- Global single-row registry of the active cohort. The fixed id plus
-- the CHECK constraint pin the table to exactly one row; activating a
-- cohort replaces the previous pointer.
CREATE TABLE IF NOT EXISTS registry (
    id SMALLINT PRIMARY KEY DEFAULT 1,
    active_guild_id BIGINT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT single_row CHECK (id = 1)
);
`

const migration004Down = `
DROP TABLE IF EXISTS registry;
`
