package api

import (
	"context"
	"errors"

	"regroup-hq/regroup/pkg/api/types"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/transform"
)

// HandleError maps an error to an error response.
//
//	if err != nil {
//	    WriteErrorResponse(w, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var proxyErr *transform.ProxyError
	if errors.As(err, &proxyErr) {
		return types.NewUnprocessableError(proxyErr.Error(), proxyErr.Field(), types.CodeInvalidProxyName)
	}

	var shapeErr *transform.ShapeError
	if errors.As(err, &shapeErr) {
		return types.NewInvalidRequestError(shapeErr.Error(), shapeErr.Field, types.CodeInvalidDocument)
	}

	if errors.Is(err, ruleset.ErrNotLoaded) {
		return types.NewServiceUnavailableError("The rule set has not been loaded yet. Please retry shortly.")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError("Request timeout: the request took too long to complete")
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}
