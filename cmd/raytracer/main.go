// Command raytracer renders sphere scenes to image files and serves them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/df07/go-sphere-tracer/internal/logger"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
