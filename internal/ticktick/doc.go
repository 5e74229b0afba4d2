// Package ticktick provides a typed client for the TickTick Open API
// along with task classification, project scanning and batch creation
// workflows built on top of it.
//
// The client owns the OAuth2 credentials for one user session and
// transparently refreshes the access token when the API rejects it.
// All expected failures are returned as *Error values carrying an
// ErrorKind, so callers can branch on the failure class without
// parsing message strings.
package ticktick
