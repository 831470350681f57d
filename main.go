// Package main is the entry point for the varscope CLI.
package main

import "varscope.dev/pkg/varscope/cmd"

func main() {
	cmd.Execute()
}
