// Command noisebox is the host process's multi-tool entry point (spec
// §6): a single binary whose first positional argument selects one of
// three sub-tools, grounded in the teacher's flag-gated main() generalized
// to homepodctl's (other_examples/) positional-subcommand style.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "mediaplayer":
		return runMediaplayer(rest)
	case "buildschema":
		return runBuildschema(rest)
	case "apitool":
		return runApitool(rest)
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "noisebox: unknown sub-tool %q\n\n", sub)
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `noisebox - a NoiseBox media control-plane host process

Usage:
  noisebox mediaplayer [--config <path>] [--debug] [--server_log_level <level>]
  noisebox buildschema --out <dir>
  noisebox apitool <COMMAND_NAME> [args...] [--addr <host:port>]

Environment:
  LOGLEVEL   sets the process log level (default: info)
`)
}
