package models

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/dharmasatrya/farecalendar/pkg/errors"
)

const (
	DateLayout          = "2006-01-02"
	DefaultTripDuration = 7
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// CalendarRequest holds the price-calendar query parameters.
type CalendarRequest struct {
	Origin          string `query:"origin" validate:"required"`
	Destination     string `query:"destination" validate:"required"`
	TripDurationRaw string `query:"tripDuration"`

	TripDuration int `query:"-"`
}

func (r *CalendarRequest) Validate() error {
	if err := checkRequired(r); err != nil {
		return err
	}

	r.TripDuration = DefaultTripDuration
	if r.TripDurationRaw == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(r.TripDurationRaw))
	if err != nil || n <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidParameter,
			fmt.Sprintf("tripDuration must be a positive integer, got %q", r.TripDurationRaw))
	}
	r.TripDuration = n
	return nil
}

func (r CalendarRequest) CacheKey() string {
	return fmt.Sprintf("calendar_%s_%s_%dd", r.Origin, r.Destination, r.TripDuration)
}

// SearchRequest holds the single-date search query parameters.
type SearchRequest struct {
	Origin        string `query:"origin" validate:"required"`
	Destination   string `query:"destination" validate:"required"`
	DepartureDate string `query:"departureDate" validate:"required"`
	ReturnDate    string `query:"returnDate"`
}

func (r *SearchRequest) Validate() error {
	return checkRequired(r)
}

// CacheKey uses the raw returnDate so a defaulted return date and an omitted
// one stay distinct entries.
func (r SearchRequest) CacheKey() string {
	ret := r.ReturnDate
	if ret == "" {
		ret = "oneway"
	}
	return fmt.Sprintf("search_%s_%s_%s_%s", r.Origin, r.Destination, r.DepartureDate, ret)
}

// EffectiveReturnDate is ReturnDate, or DepartureDate plus a week when none
// was given.
func (r SearchRequest) EffectiveReturnDate() (string, error) {
	if r.ReturnDate != "" {
		return r.ReturnDate, nil
	}

	dep, err := time.Parse(DateLayout, r.DepartureDate)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrInvalidParameter,
			fmt.Sprintf("departureDate must be formatted YYYY-MM-DD, got %q", r.DepartureDate))
	}
	return dep.AddDate(0, 0, DefaultTripDuration).Format(DateLayout), nil
}

func checkRequired(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.CodeInternalError, appErrors.ErrInternal.Status, "request validation failed")
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return appErrors.Clone(appErrors.ErrMissingParameter,
		"Missing required parameters: "+strings.Join(missing, ", "))
}
