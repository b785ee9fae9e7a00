package models

import (
	id "clientele/pkg/domain"
)

// Domain events capture what happened to a client record. They are pure
// data structures with no behavior; the application layer decides when to
// publish them and the events adapter decides how.

// AddressChanged is emitted when a persisted record ends up with a
// different address than before (or when a record is first created).
type AddressChanged struct {
	ClientID  id.ClientID
	Recipient Recipient
	Address   Address
}
