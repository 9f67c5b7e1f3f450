package handler

import (
	"errors"
	"net/http"

	"medvault/internal/domain"
	"medvault/internal/httputil"
)

// handleError converts domain errors to an error envelope
func (d *Dispatcher) handleError(w http.ResponseWriter, r *http.Request, channel string, err error) {
	code := domain.ErrorCode(err)
	status := code.StatusCode()

	body := &httputil.ErrorBody{
		Code:        string(code),
		Message:     err.Error(),
		Recoverable: code.Recoverable(),
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		body.Details = map[string]string{
			"resourceType": conflictErr.ResourceType,
			"resourceId":   conflictErr.ResourceID,
		}
		if conflictErr.Location != "" {
			body.Details["location"] = conflictErr.Location
		}
	}

	attrs := []interface{}{
		"channel", channel,
		"code", code,
		"request_id", httputil.GetRequestID(r),
		"error", err,
	}
	if status >= http.StatusInternalServerError && code != domain.CodeFolderUnavailable {
		d.logger.Error("rpc call failed", attrs...)
	} else {
		d.logger.Debug("rpc call rejected", attrs...)
	}

	httputil.RespondError(w, status, body)
}

// failure is the message of the recovered {success, error} shapes
func failure(err error) string {
	return string(domain.ErrorCode(err)) + ": " + err.Error()
}
