package main

import "github.com/matthieukhl/shopcore/internal/cmd"

func main() {
	cmd.Execute()
}
