package validators

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
)

// ParseQueryStation reads an optional station filter. Empty means all stations.
func ParseQueryStation(r *http.Request, key string) (*enums.Station, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	station, err := enums.ParseStation(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown station").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return &station, nil
}

// ParsePathUUID reads a UUID path parameter already extracted by the router.
func ParsePathUUID(key, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
