package contentschema

import "github.com/osvaldoandrade/contentschema/internal/cli"

// Execute runs the contentschema CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
