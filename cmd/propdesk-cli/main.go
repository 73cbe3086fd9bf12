package main

import "github.com/nfrund/propdesk/cmd/propdesk-cli/cmd"

func main() {
	cmd.Execute()
}
