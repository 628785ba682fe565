// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the keyed document store the decision managers
persist through.

# Contract

The Store interface exposes get/put/delete/list over logical tables of JSON
documents. A table that has never been written to reads as an empty
collection. Callers unmarshal documents into their own types; the store has
no knowledge of the domain.

# SQL implementation

SQLStore maps every logical table onto one physical table:

	document(tbl, key, doc)  PRIMARY KEY (tbl, key)

CreateSchema initializes it and is safe to call repeatedly. The SQL uses $1
placeholders, which both supported drivers (modernc.org/sqlite and lib/pq)
accept, so the same store runs on sqlite or postgres depending on
configuration.

# Table naming

The managers partition data by logical table name:

  - "elections": one document per election, keyed by election id
  - "votes/{electionID}": one document per vote, keyed by voter id
  - "approvals": one subject per cart under approval, keyed by cart name
  - "approvers": the approver registry, keyed by approver id
  - "carts" and "cart_items/{cart}": cart metadata and contents
*/
package store
