// Package assets generates the three build artifacts of a web update notification
// build: the JSON manifest polled by clients, the notification stylesheet and the
// polling script. Generation and hashing are pure functions of their inputs.
package assets
