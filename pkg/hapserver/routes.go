package hapserver

import (
	"net/http"

	"github.com/backkem/hap/pkg/session"
	"github.com/backkem/hap/pkg/tlv8"
)

// route dispatches one request by path.
func (s *Server) route(slot *session.Slot, req *http.Request, body []byte, resp *Response) {
	switch req.URL.Path {
	case "/pair-setup":
		if !s.allow(req, resp, http.MethodPost) {
			return
		}
		s.pairSetup(slot, req, body, resp)

	case "/identify":
		if !s.allow(req, resp, http.MethodPost) {
			return
		}
		s.identify(resp)

	case "/pair-verify", "/pairings":
		if !s.allow(req, resp, http.MethodPost) {
			return
		}
		s.status(resp, StatusConnectionAuthorizationRequired, HAPStatusInsufficientAuthorization)

	case "/accessories":
		if !s.allow(req, resp, http.MethodGet) {
			return
		}
		s.status(resp, StatusConnectionAuthorizationRequired, HAPStatusInsufficientAuthorization)

	case "/characteristics":
		if !s.allow(req, resp, http.MethodGet, http.MethodPut) {
			return
		}
		s.status(resp, StatusConnectionAuthorizationRequired, HAPStatusInsufficientAuthorization)

	default:
		s.status(resp, http.StatusNotFound, HAPStatusResourceDoesNotExist)
	}
}

// allow writes 405 and returns false unless req uses one of methods.
func (s *Server) allow(req *http.Request, resp *Response, methods ...string) bool {
	for _, m := range methods {
		if req.Method == m {
			return true
		}
	}
	s.status(resp, http.StatusMethodNotAllowed, HAPStatusInvalidValue)
	return false
}

// pairSetup runs one pair setup message. The TLV response is built in place
// in the response buffer.
func (s *Server) pairSetup(slot *session.Slot, req *http.Request, body []byte, resp *Response) {
	if req.Header.Get("Content-Type") != ContentTypePairingTLV8 || req.Header.Get("Content-Length") == "" {
		s.status(resp, http.StatusBadRequest, HAPStatusInvalidValue)
		return
	}

	in := slot.ParseInput(body, tlv8.DefaultMaxItems)

	resp.Start(http.StatusOK)
	resp.Add("Content-Type", ContentTypePairingTLV8)
	out := slot.Output(resp.Data())
	state := s.setup.Handle(slot.ID(), in, out)
	resp.SetContentLength(out.Len())

	if s.log != nil {
		s.log.Debugf("slot %d: pair setup replied %s", slot.ID(), state)
	}
}

// identify runs the identify routine. It is only allowed while unpaired.
func (s *Server) identify(resp *Response) {
	if s.pairings != nil && s.pairings.Count() > 0 {
		s.status(resp, http.StatusBadRequest, HAPStatusInsufficientPrivileges)
		return
	}
	if s.onIdentify != nil {
		s.onIdentify()
	}
	resp.Start(http.StatusNoContent)
	resp.End(nil)
}
