package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/http/response"
)

// EnvelopeTransformer wraps every response body in the shared envelope:
// {"success":true,"data":...} or {"success":false,"error":{...}}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if err, ok := v.(error); ok {
		if apiErr := toAPIError(err); apiErr != nil {
			v = apiErr
		}
	}
	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			Success: false,
			Error: &response.ErrorBody{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		}, nil
	}
	if _, ok := v.(response.Envelope); ok {
		return v, nil
	}
	return response.Envelope{Success: strings.HasPrefix(status, "2"), Data: v}, nil
}
