// Command modelgen writes the demonstration group bundles to a directory so
// the service can be pointed at real artifacts on disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eduymaz/aller-mind/internal/inference/artifact"
	"github.com/eduymaz/aller-mind/internal/inference/model/sample"
)

func main() {
	dir := flag.String("out", "./models", "output directory")
	pattern := flag.String("pattern", artifact.DefaultPattern, "file name pattern, %d is the group id")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *dir, err)
		os.Exit(1)
	}
	bundles, err := sample.Bundles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build bundles: %v\n", err)
		os.Exit(1)
	}
	for _, b := range bundles {
		path, err := artifact.WriteBundle(*dir, *pattern, b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "group %d: %v\n", b.GroupID, err)
			os.Exit(1)
		}
		fmt.Printf("group %d (%s, %s) -> %s\n", b.GroupID, b.Algorithm, b.Estimator.Kind, path)
	}
}
