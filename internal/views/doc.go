// Package views computes the read models shown to the user from the current
// note, plan and session collections. Every function is pure and recomputes
// from scratch.
package views
