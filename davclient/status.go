package davclient

import (
	"net/http"

	"github.com/xxxsen/davsync/daverr"
)

var clientErrorReasons = map[int]string{
	http.StatusBadRequest:            "malformed request",
	http.StatusMethodNotAllowed:      "method not supported by server, the resource may already exist",
	http.StatusConflict:              "conflict, parent collection missing or resource locked",
	http.StatusPreconditionFailed:    "precondition failed",
	http.StatusRequestEntityTooLarge: "payload too large",
	http.StatusLocked:                "resource is locked",
	http.StatusFailedDependency:      "failed dependency",
}

var serverErrorReasons = map[int]string{
	http.StatusInternalServerError: "internal server error",
	http.StatusBadGateway:          "bad gateway",
	http.StatusServiceUnavailable:  "service unavailable",
	http.StatusGatewayTimeout:      "gateway timeout",
	http.StatusInsufficientStorage: "insufficient storage",
}

func statusText(code int) string {
	if s := http.StatusText(code); len(s) > 0 {
		return s
	}
	return "Unknown"
}

func reasonOf(table map[int]string, code int, fallback string) string {
	if r, ok := table[code]; ok {
		return r
	}
	return fallback
}

// ClassifyStatus returns nil for a successful status and the matching
// domain error otherwise. It is total over every integer code.
func ClassifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		e := daverr.New(daverr.KindAuth, "authentication failed: invalid username or password, please check your credentials")
		e.Code = code
		return e
	case code == http.StatusForbidden:
		e := daverr.New(daverr.KindAuth, "access forbidden: insufficient permission, please check your credentials and account permissions")
		e.Code = code
		return e
	case code == http.StatusNotFound:
		e := daverr.NotFound("resource not found")
		e.Code = code
		return e
	case code >= 400 && code < 500:
		return daverr.Protocol(code, "client error: %d %s, %s", code, statusText(code), reasonOf(clientErrorReasons, code, "client error"))
	case code >= 500 && code < 600:
		return daverr.Protocol(code, "server error: %d %s, %s", code, statusText(code), reasonOf(serverErrorReasons, code, "server error"))
	}
	return daverr.Protocol(code, "unexpected status: %d %s", code, statusText(code))
}
