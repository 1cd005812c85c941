// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sync runs the synchronization pipeline once and prints the summary
// as JSON on stdout. Logs go to stderr so that the output stays parseable.
//
// Examples:
//
//	sync --kind both --target 40 --batch 4
//	sync --kind movie --clear
//	sync --reclassify
//	sync --verify-rules --rules ./rules.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
