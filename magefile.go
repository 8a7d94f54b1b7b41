//go:build mage

package main

import (
	"github.com/magefile/mage/sh"
)

// Build compiles the player binary.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/glplayer", "./cmd/player")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}
