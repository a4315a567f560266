package api

// Package api exposes the HTTP surface of the server: download session
// endpoints, media probing, file listing, and conversion endpoints.
