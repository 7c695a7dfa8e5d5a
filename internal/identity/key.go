// Package identity knows the format of product keys used by the storage layer.
package identity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KeyLength is the length of a hex encoded document key.
const KeyLength = 24

// IsValidKey reports whether s is a syntactically valid product key:
// exactly 24 hexadecimal characters. It performs no I/O.
func IsValidKey(s string) bool {
	return len(s) == KeyLength && primitive.IsValidObjectID(s)
}

// NewKey returns a fresh key in the storage key format.
// Keys sort in creation order.
func NewKey() string {
	return primitive.NewObjectID().Hex()
}
