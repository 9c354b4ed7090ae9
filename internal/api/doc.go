// Package api is the HTTP client for the TaskMate REST backend.
//
// User endpoints live under /user; task endpoints sit at the API root. Every
// call takes a context and makes exactly one request: failures are returned
// to the caller, which decides how to alert the user. Nothing is retried.
package api
