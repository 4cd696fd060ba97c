package cal

import (
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/google/uuid"
)

// classifyAzureError maps an Azure SDK error into CAL's own Failure
// taxonomy so the retry policy and the check library never see an
// azcore.ResponseError directly.
func classifyAzureError(resource string, err error) *Failure {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		kind := ClassifyHTTPStatus(respErr.StatusCode)
		causeTrace := requestID(respErr)
		if causeTrace == "" {
			causeTrace = uuid.NewString()
		}
		return &Failure{Kind: kind, Resource: resource, Reason: respErr.Error(), CauseTrace: causeTrace, Wrapped: err}
	}
	return NewNetwork(resource, err)
}

// requestID extracts Azure's x-ms-request-id header, the provider's own
// correlation id for a failed call, when the response carries one.
func requestID(respErr *azcore.ResponseError) string {
	if respErr == nil || respErr.RawResponse == nil {
		return ""
	}
	return respErr.RawResponse.Header.Get("x-ms-request-id")
}
