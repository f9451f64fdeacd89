// Package memory provides cdrstreamer.Memory implementations: a growable Go
// byte slice and an adapter over wazero linear memory.
package memory
