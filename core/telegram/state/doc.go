// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions are keyed by Telegram user id and carry a typed payload, so each bot
// defines its own draft type while sharing the transition plumbing.
package state
