/*
main.go - sportbonus entry point

PURPOSE:
  Command-line front end of the sport bonus pipeline.

COMMANDS:
  sportbonus run        Extract, compute and load the report, then notify
  sportbonus generate   Write synthetic HR and activity files
  sportbonus serve      Serve the persisted report over HTTP

EXIT CODES:
  0  success (a failed notification still exits 0)
  1  configuration or usage error, anything unclassified
  2  a source file is missing
  3  a required column could not be resolved
  4  the sink could not be reached
  5  the report could not be written
  6  a source row is invalid

CONFIGURATION:
  --config file, ./sportbonus.yaml, then SPORTBONUS_* variables.
  See config/config.go for every key.

SEE ALSO:
  - pipeline/: Stage orchestration
  - config/: Settings
*/
package main

import (
	"io"
	"os"

	"github.com/warp/sport-bonus/generic"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and maps the error to an exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	printError(stderr, err)
	if code := generic.ExitCode(err); code != 0 {
		return code
	}
	return 1
}
