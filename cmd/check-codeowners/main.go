// Command check-codeowners runs only the codeowners check against SCORECARD_REPO_PATH
// (default: the working directory). It exits 0 when the check passes and 1
// otherwise.
package main

import (
	"os"

	_ "scorecard/internal/checks/builtin"
	"scorecard/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	os.Exit(cli.ExecuteSingle("codeowners"))
}
