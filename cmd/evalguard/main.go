package main

import (
	"os"

	"github.com/GriffinCanCode/evalguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
