//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the parallax binary.
func (Build) Binary() error {
	if err := buildShaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "parallax", "."), withStream()); err != nil {
		return err
	}
	return nil
}
