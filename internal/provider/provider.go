// Package provider contains clients for upstream music-database services.
//
// Each sub-package wraps one service and maps its operations 1:1 onto
// upstream endpoints. The discogs sub-package covers the Discogs database
// search and image endpoints.
package provider
