// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cart manages shopping carts, the external resource purchase
approvals are scoped to.

A cart is registered by name and holds a list of parts with quantities.
Clearing a cart empties it without unregistering it, so the same cart name
cycles through repeated purchase rounds. The Manager's Clear method is what
the approval workflow calls through the approval.Clearer interface when a
purchase request reaches unanimity.
*/
package cart
