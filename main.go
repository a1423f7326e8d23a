package main

import "github.com/kozaktomas/photo-report/cmd"

func main() {
	cmd.Execute()
}
