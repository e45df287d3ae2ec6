//go:build !darwin

package main

// sleeper is a no-op off macOS; the channel never fires.
func sleeper(chan bool) {}
