// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
// Adapted as the entrypoint for the matching-statistics / SSS scanner.

package main

import "github.com/refidx/msrindex/cmd"

func main() {
	cmd.Execute()
}
