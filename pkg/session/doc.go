/*
Package session implements session management and persistence orchestration.

A Manager serializes the turns of one user (in process, and across replicas
when a distributed locker is configured), loads or creates the user's
conversation session, and persists it at the end of a successful turn.
*/
package session
