package main

import (
	"os"

	"github.com/updatectl/updatectl/client/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
