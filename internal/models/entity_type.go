package models

import "fmt"

// EntityType classifies the domain entity an inbox message concerns.
// Stored as a smallint; the set is closed.
type EntityType uint8

const (
	EntityTypeUnknown EntityType = iota
	EntityTypeOrder
	EntityTypeProduct
	EntityTypeCustomer
)

func (t EntityType) String() string {
	switch t {
	case EntityTypeOrder:
		return "order"
	case EntityTypeProduct:
		return "product"
	case EntityTypeCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a member of the closed set.
func (t EntityType) Valid() bool {
	return t == EntityTypeOrder || t == EntityTypeProduct || t == EntityTypeCustomer
}

// ParseEntityType validates a wire-level smallint tag
func ParseEntityType(raw uint8) (EntityType, error) {
	t := EntityType(raw)
	if !t.Valid() {
		return EntityTypeUnknown, fmt.Errorf("unknown entity type: %d", raw)
	}
	return t, nil
}
