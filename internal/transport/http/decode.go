package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/validation"
)

// decodeAndValidate reads a JSON body into dst and validates it. Oversized
// bodies become 413 and malformed JSON 400.
func decodeAndValidate(r *http.Request, v *validation.Validator, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.ErrPayloadTooLarge
		}
		return apperrors.InvalidRequestWithError(err)
	}
	return v.Struct(dst)
}
