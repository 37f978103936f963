package hapserver

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// HTTP status codes used by HAP that net/http does not name.
const (
	// StatusConnectionAuthorizationRequired is returned for resources that need
	// a verified session.
	StatusConnectionAuthorizationRequired = 470
)

// HAP status codes carried in JSON response bodies.
const (
	HAPStatusSuccess                   = 0
	HAPStatusInsufficientPrivileges    = -70401
	HAPStatusCommunicationFailure      = -70402
	HAPStatusResourceBusy              = -70403
	HAPStatusOutOfResources            = -70407
	HAPStatusResourceDoesNotExist      = -70409
	HAPStatusInvalidValue              = -70410
	HAPStatusInsufficientAuthorization = -70411
)

// Content types.
const (
	ContentTypePairingTLV8 = "application/pairing+tlv8"
	ContentTypeHAPJSON     = "application/hap+json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// statusBody is the JSON body of an error response.
type statusBody struct {
	Status int `json:"status"`
}

// StatusText returns the reason phrase for an HTTP status code.
func StatusText(code int) string {
	if code == StatusConnectionAuthorizationRequired {
		return "Connection Authorization Required"
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}

// WriteStatus writes a complete response carrying a HAP JSON status body.
func WriteStatus(r *Response, code, hapStatus int) error {
	body, err := json.Marshal(statusBody{Status: hapStatus})
	if err != nil {
		return err
	}
	r.Start(code)
	r.Add("Content-Type", ContentTypeHAPJSON)
	r.End(body)
	return r.Err()
}
