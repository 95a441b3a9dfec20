// Package http exposes the snippet gate over a JSON API.
package http
