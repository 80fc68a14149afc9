// Package domain contains the request parameters and error taxonomy of the
// badge composer. Keep this package free of transport (HTTP) and rendering concerns.
package domain
