package repositories

import (
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// NewRecordNotFoundError reports a missing record of kind under id
func NewRecordNotFoundError(kind, id string) error {
	return dnderr.NotFoundf("%s '%s' not found", kind, id).
		WithMeta(kind+"_id", id)
}

// NewNilRecordError reports a nil record handed to a repository
func NewNilRecordError(kind string) error {
	return dnderr.InvalidArgumentf("%s cannot be nil", kind)
}

// NewMissingKeyError reports an empty identifier
func NewMissingKeyError(field string) error {
	return dnderr.InvalidArgumentf("%s is required", field)
}
