// Package postgrescatalog provides PostgreSQL persistence for the catalog
// entities the lifecycle workflows operate on: exemplaries, shelves, and books.
//
// The lifecycle-relevant fields of an exemplary (storage flag, shelf location,
// return-to-shelf date) are denormalized onto the exemplary row, so the engine
// can evaluate a batch from one catalog read plus the ledger reads.
//
// Expected schema:
//
//	CREATE TABLE books (
//	    id               UUID PRIMARY KEY,
//	    title            TEXT NOT NULL,
//	    author           TEXT NOT NULL,
//	    genre            TEXT NOT NULL DEFAULT '',
//	    publication_year INT NOT NULL DEFAULT 0
//	);
//
//	CREATE TABLE shelves (
//	    id      UUID PRIMARY KEY,
//	    room_id UUID NOT NULL,
//	    number  INT NOT NULL,
//	    UNIQUE (room_id, number)
//	);
//
//	CREATE TABLE exemplaries (
//	    id                   UUID PRIMARY KEY,
//	    identifier           TEXT NOT NULL UNIQUE,
//	    book_id              UUID NOT NULL REFERENCES books (id),
//	    acquisition_date     DATE NOT NULL,
//	    price_cents          BIGINT NOT NULL,
//	    in_storage           BOOLEAN NOT NULL DEFAULT FALSE,
//	    shelf_id             UUID NULL REFERENCES shelves (id),
//	    return_to_shelf_date DATE NULL,
//	    CHECK (NOT in_storage OR shelf_id IS NULL)
//	);
package postgrescatalog
