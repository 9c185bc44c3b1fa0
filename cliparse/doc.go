// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings the web server needs:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands built with cobra bind the same flags to their own flag set and
resolve them afterwards:

	cliparse.BindFlags(cmd.PersistentFlags(), &cfg)
	// after parsing
	err := cliparse.Resolve(cmd.Flags(), &cfg)

# CLI Flags

	-p, --port              Server port (default 3318)
	-d, --database-url      Database URL (required)
	-t, --database-type     sqlite (default) or postgres
	--session-secret        Session signing secret (required to serve)
	--session-ttl           Session lifetime (default 12h)
	--redis-url             Redis results cache; empty uses memory
	--results-cache-ttl     Cached results lifetime (default 5m)
	--media-dir             Uploaded photo directory (default media)
	--max-upload-bytes      Upload limit (default 5 MiB)
	--password-cost         bcrypt cost (default 10)
	--log-format            text or json
	--log-level             debug, info, warn, error
	--env-file              Environment file (default .env)

# Environment Variables

Flags fall back to environment variables named after them:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SECRET  → --session-secret
	REDIS_URL       → --redis-url

and so on for the rest. Variables from the env file are loaded first but
never replace variables already set, so the precedence is

	flag > environment > env file > default

# Validation

Resolve returns an error for an out-of-range port, a missing DATABASE_URL,
or an unknown database type, log format, or log level. ValidateServer adds
the checks only serving needs: SESSION_SECRET must be provided.
*/
package cliparse
