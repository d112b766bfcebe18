// Package main is the entry point of the intranet portal. The portal logs
// users in against the Active Directory, falls back to a local credential
// store, caches directory logins locally and shows each user the internal
// systems their groups may open.
package main
