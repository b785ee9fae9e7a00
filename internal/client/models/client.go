// Package models holds the client knowledge aggregate, its value types and
// the domain events the application layer publishes.
package models

import (
	id "clientele/pkg/domain"
)

// Client is one customer knowledge record.
//
// Invariants:
//   - Every field is present and valid; a partially-constructed client
//     never exists because all fields are constructor-validated types.
//   - ID is assigned at creation and never changes for the record's life.
//
// Mutation happens by reconstruction: WithAddress and WithFamilySituation
// return a new value and leave the receiver untouched, which keeps
// before/after comparisons safe under concurrent readers.
type Client struct {
	ID        id.ClientID
	Surname   PersonName
	GivenName PersonName
	Address   Address
	Situation FamilySituation
	Children  ChildrenCount
}

// WithID returns a copy carrying the given id. Used by the service layer
// to pin the immutable identity of an existing record onto replacement data.
func (c Client) WithID(clientID id.ClientID) Client {
	c.ID = clientID
	return c
}

// WithAddress returns a copy with the address replaced.
func (c Client) WithAddress(addr Address) Client {
	c.Address = addr
	return c
}

// WithFamilySituation returns a copy with the family situation and
// children count replaced.
func (c Client) WithFamilySituation(situation FamilySituation, children ChildrenCount) Client {
	c.Situation = situation
	c.Children = children
	return c
}

// Recipient identifies the person an address event is addressed to.
type Recipient struct {
	Surname   PersonName
	GivenName PersonName
}

// RecipientOf extracts the event recipient from a client record.
func RecipientOf(c Client) Recipient {
	return Recipient{Surname: c.Surname, GivenName: c.GivenName}
}
