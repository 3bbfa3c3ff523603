package util

import "github.com/google/uuid"

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// NamedID returns a stable UUID derived from name within namespace.
func NamedID(namespace uuid.UUID, name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
