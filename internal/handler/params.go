package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/timekeeper/internal/domain"
)

const dateOnly = "2006-01-02"

var errEmptyBody = errors.New("request body is required")

// bindID reads the {id} path parameter as a UUID.
func bindID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, errors.New("invalid format for parameter id")
	}
	return id, nil
}

// bindDateRange reads the optional startDate/endDate query parameters.
// Each accepts RFC 3339 or YYYY-MM-DD; a bare endDate covers the whole UTC day.
func bindDateRange(r *http.Request) (domain.DateRange, error) {
	var start, end *string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "startDate", q, &start); err != nil {
		return domain.DateRange{}, errors.New("invalid format for parameter startDate")
	}
	if err := runtime.BindQueryParameter("form", true, false, "endDate", q, &end); err != nil {
		return domain.DateRange{}, errors.New("invalid format for parameter endDate")
	}

	var rng domain.DateRange
	var err error
	if start != nil && *start != "" {
		if rng.From, err = parseBound("startDate", *start, false); err != nil {
			return domain.DateRange{}, err
		}
	}
	if end != nil && *end != "" {
		if rng.To, err = parseBound("endDate", *end, true); err != nil {
			return domain.DateRange{}, err
		}
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return domain.DateRange{}, errors.New("startDate must not be after endDate")
	}
	return rng, nil
}

// parseBound parses one range bound. A date-only upper bound becomes the
// last microsecond of that UTC day so the inclusive range covers it.
func parseBound(name, val string, upper bool) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.ParseInLocation(dateOnly, val, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", name)
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &d, nil
}

// bindLimit reads the optional limit query parameter.
func bindLimit(r *http.Request) (*int, error) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return nil, errors.New("invalid format for parameter limit")
	}
	return limit, nil
}

// decodeBody decodes a JSON request body into dst. A body over the size cap
// surfaces as *http.MaxBytesError so respondError can answer 413.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return errEmptyBody
	default:
		return errors.New("malformed JSON body")
	}
}
