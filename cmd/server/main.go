package main

import (
	"os"

	"github.com/iliyamo/skycomfort-server/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
