package handler

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"mata/internal/apierror"
	"mata/internal/reconciliation"
	"mata/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalide: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// queryDate reads and parses the date query parameter. Returns false and
// writes a 400 when it is missing or malformed.
func queryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Le paramètre date est requis"))
		return time.Time{}, false
	}
	d, err := reconciliation.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return time.Time{}, false
	}
	return d, true
}

// respondError maps service errors to status codes. Unknown errors are handed
// to the ErrorHandler middleware so internals are logged, not returned.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconciliation.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, reconciliation.ErrUnknownPointDeVente):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Aucune donnée pour cette date"))
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, apierror.New("La réconciliation a été modifiée entre-temps, rechargez-la avant de sauvegarder"))
	default:
		_ = c.Error(err)
	}
}
