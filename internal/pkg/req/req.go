/*
Package req binds HTTP request bodies and path parameters, reporting
failures as coded errors ready for resp.RespondError.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"drawify/internal/pkg/errs"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes int64 = 1 << 20

// BindJSON decodes a JSON body into dst, rejecting unknown fields and trailing data.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}
	return decode(r, dst, false)
}

// BindOptionalJSON is BindJSON for endpoints whose body may be omitted.
// An empty body leaves dst untouched.
func BindOptionalJSON(r *http.Request, dst any) *errs.CustomError {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}
	return decode(r, dst, true)
}

func decode(r *http.Request, dst any, allowEmpty bool) *errs.CustomError {
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// Int64Param parses the named chi path parameter as a positive integer.
func Int64Param(r *http.Request, name string) (int64, *errs.CustomError) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return v, nil
}
