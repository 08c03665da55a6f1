// Command shadowrecon merges username-enumeration and web-search reports into
// a ranked list of identity candidates.
//
// Usage:
//
//	shadowrecon refine --target alice
//	shadowrecon refine --enumeration report.json --search bing.json --output refined.json
//	shadowrecon locate --platform instagram output/alice/refined_targets.json
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
