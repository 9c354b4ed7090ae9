// Package domain defines the flat user and task records shared by the API
// client, storage and UI layers.
package domain
