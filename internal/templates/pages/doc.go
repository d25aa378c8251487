// Package pages holds the placeholder views the shell renders for each route.
package pages

//go:generate templ generate
