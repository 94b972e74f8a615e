package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

// StatusCode maps an error kind to the http status sent alongside the error
// envelope.
func StatusCode(err error) int {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		return http.StatusInternalServerError
	}

	switch errx.Kind() {
	case errorx.KindNotFound:
		return http.StatusNotFound
	case errorx.KindForbidden:
		return http.StatusForbidden
	case errorx.KindConflict:
		return http.StatusConflict
	case errorx.KindInvalidState:
		return http.StatusUnprocessableEntity
	case errorx.KindValidationError:
		return http.StatusBadRequest
	case errorx.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(ctx context.Context, w http.ResponseWriter, resp any) {
	if err := WriteJson(w, http.StatusOK, newResponse(resp)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if err := WriteJson(w, StatusCode(err), newErrorResponse(err)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJson(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
