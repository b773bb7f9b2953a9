package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "fantasy-draft"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

var kindMapping = map[usecase.Kind]mappedError{
	usecase.KindInvalidInput:           {HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
	usecase.KindNotFound:               {HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
	usecase.KindUnauthorized:           {HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"},
	usecase.KindForbidden:              {HTTPStatus: http.StatusForbidden, Reason: "forbidden", Status: "PERMISSION_DENIED"},
	usecase.KindDependencyUnavailable:  {HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
	usecase.KindNotYourTurn:            {HTTPStatus: http.StatusConflict, Reason: "notYourTurn", Status: "FAILED_PRECONDITION"},
	usecase.KindPlayerUnavailable:      {HTTPStatus: http.StatusConflict, Reason: "playerUnavailable", Status: "ALREADY_EXISTS"},
	usecase.KindQuotaExceeded:          {HTTPStatus: http.StatusConflict, Reason: "quotaExceeded", Status: "RESOURCE_EXHAUSTED"},
	usecase.KindDraftNotInProgress:     {HTTPStatus: http.StatusConflict, Reason: "draftNotInProgress", Status: "FAILED_PRECONDITION"},
	usecase.KindChipAlreadyUsed:        {HTTPStatus: http.StatusConflict, Reason: "chipAlreadyUsed", Status: "FAILED_PRECONDITION"},
	usecase.KindConcurrentModification: {HTTPStatus: http.StatusConflict, Reason: "concurrentModification", Status: "ABORTED"},
	usecase.KindChipOutOfWindow:        {HTTPStatus: http.StatusUnprocessableEntity, Reason: "chipOutOfWindow", Status: "OUT_OF_RANGE"},
	usecase.KindTargetRequired:         {HTTPStatus: http.StatusUnprocessableEntity, Reason: "targetRequired", Status: "INVALID_ARGUMENT"},
	usecase.KindInvalidTarget:          {HTTPStatus: http.StatusUnprocessableEntity, Reason: "invalidTarget", Status: "INVALID_ARGUMENT"},
	usecase.KindFeedDataUnavailable:    {HTTPStatus: http.StatusServiceUnavailable, Reason: "feedDataUnavailable", Status: "UNAVAILABLE"},
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	if mapped, ok := kindMapping[usecase.KindOf(err)]; ok {
		return mapped
	}
	return mappedError{
		HTTPStatus: http.StatusInternalServerError,
		Reason:     "internalError",
		Status:     "INTERNAL",
	}
}
