package router

import (
	"encoding/json"
	"net/http"

	"github.com/medalboard/backend/pkg/errorx"
	"github.com/mitchellh/mapstructure"
)

var (
	errMethodNotAllowed = errorx.New(errorx.BadRequest, "Method is not allowed")
	errBadRequest       = errorx.New(errorx.BadRequest, "Invalid request")
)

func parseRequest(req *http.Request, method string, v any) error {
	switch method {
	case http.MethodGet:
		return parseQuery(req, v)
	default:
		if req.ContentLength == 0 {
			return nil
		}
		return json.NewDecoder(req.Body).Decode(v)
	}
}

// parseQuery decodes url query parameters into v using its json tags.
// Repeated parameters are decoded into slices.
func parseQuery(req *http.Request, v any) error {
	data := map[string]any{}
	for key, values := range req.URL.Query() {
		if len(values) == 1 {
			data[key] = values[0]
		} else {
			data[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
