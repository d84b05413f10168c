//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the demo. ANIMA_CONFIG points it at a config file and ANIMA_FRAMES
// limits the number of frames.
func (Run) Demo() error {
	mg.Deps(Build.Demo)

	args := []string{}
	if cfg := os.Getenv("ANIMA_CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	if frames := os.Getenv("ANIMA_FRAMES"); frames != "" {
		args = append(args, "-frames", frames)
	}
	fmt.Println("Run demo...")
	if _, err := executeCmd("bin/anima-demo", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
