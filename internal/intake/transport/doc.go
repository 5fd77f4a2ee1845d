// Package transport posts encoded drafts to the submission API and reads its
// response envelopes. It also drives the edit-by-token flow from the client
// side.
package transport
