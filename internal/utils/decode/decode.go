package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"notary/internal/models"
	"notary/internal/validator"
)

const maxBodyBytes = 1 << 20

// JSON decodes the request body into v and validates its tags. Every failure
// wraps models.ErrInvalidParams.
func JSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %s", models.ErrInvalidParams, err.Error())
	}
	defer r.Body.Close()

	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body too large", models.ErrInvalidParams)
	}

	if err := json.Unmarshal(body, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%w: malformed json at offset %d", models.ErrInvalidParams, syntaxErr.Offset)
		}
		return fmt.Errorf("%w: %s", models.ErrInvalidParams, err.Error())
	}

	return validator.Struct(v)
}
