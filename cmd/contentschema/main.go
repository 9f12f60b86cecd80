package main

import (
	"os"

	"github.com/osvaldoandrade/contentschema/pkg/contentschema"
)

func main() {
	os.Exit(contentschema.Execute())
}
