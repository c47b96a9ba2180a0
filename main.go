// Package main is the entry point of the ut1cat URL categorization service.
package main

import "github.com/ut1cat/ut1cat/internal/cmd"

func main() {
	cmd.Main()
}
