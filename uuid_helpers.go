package identity

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// parseEntityID parses an entity identifier, reporting a validation error
// that names the entity when the value is not a UUID.
func parseEntityID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid "+entity+" id").
			WithTextCode("INVALID_ID").
			WithMetadata(map[string]any{
				"entity": entity,
				"value":  raw,
			})
	}
	return id, nil
}
