// Package object holds the result types shared by storage backends.
package object

// PutResult describes a stored object.
type PutResult struct {
	// Key is the object name as stored, without a leading slash.
	Key string
	// URL is the origin URL of the object as exposed by the backend.
	URL string
	// StatusCode is the HTTP status returned by the backend (200 for local storage).
	StatusCode int
}

// DeleteResult carries the backend response of a delete request. A non-2xx status is
// reported here instead of as an error; only transport failures surface as errors.
type DeleteResult struct {
	StatusCode int
}
