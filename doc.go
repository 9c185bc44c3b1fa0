// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Ballotbox election server.

Ballotbox runs a small election: voters register and get a voter ID,
candidates apply for positions and wait for an admin to approve them,
voters cast one vote per position, and everyone who is logged in can see
the ranked results.

# Commands

	ballotbox [serve]     Run the web server (the default)
	ballotbox migrate     Create the database schema and exit
	ballotbox createadmin --username root --email root@example.com --password ...

Every command takes the same configuration flags, which fall back to
environment variables and a .env file:

	DATABASE_URL=file:ballotbox.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --session-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite DSN or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): signs session tokens and keys IP hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REDIS_URL: share cached results through Redis instead of memory
  - MEDIA_DIR: where candidate and voter photos are stored (default: media)

See package cliparse for the full list.

# Architecture

  - handlers: page and form handlers per area
  - router: route table and access rules per route
  - middleware: request logging, flash messages, session gate
  - election: registration, candidates, voting and results
  - views: embedded html/template pages
  - auth: passwords, session tokens, role policy
  - cache: memory and Redis result caches
  - media: candidate and voter photo storage
  - models: records and view types
  - db: connections and schema
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
