package authhandlers

import "net/http"

// Handlers defines the HTTP endpoints of the auth module.
type Handlers interface {
	HandleSignUp(w http.ResponseWriter, r *http.Request)
	HandleLogin(w http.ResponseWriter, r *http.Request)
	HandleLogout(w http.ResponseWriter, r *http.Request)
}
