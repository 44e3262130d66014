package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/storefront/internal/core"
)

// maxJSONBody caps JSON request bodies. Spreadsheets go through the import
// route, which has its own limit.
const maxJSONBody = 1 << 20

// userID returns the authenticated user. The user middleware guarantees one
// on customer routes; a missing id is reported as not found.
func userID(r *http.Request) (uuid.UUID, error) {
	id, ok := core.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, &core.WriteError{Kind: core.KindNotFound, Entity: "user", Err: core.ErrNotFound}
	}
	return id, nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	return core.ParseID(entity, chi.URLParam(r, "id"))
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected so typos
// in field names do not silently drop values.
func decodeJSON(w http.ResponseWriter, r *http.Request, entity string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return core.InvalidInput(entity, "request body is empty")
		}
		return core.InvalidInput(entity, "invalid request body: %v", err)
	}
	return nil
}

// queryInt parses an integer query parameter with a default value.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
