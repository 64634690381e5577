package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// RunExtension attempts to find and execute an external moola-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// Global flags are passed to the extension as their environment variables.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "moola-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log := Logger()
		log.Debug().Str("extension", name).Err(err).Msg("extension not found")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvDataDir+"="+DataDir())
	if *storeKind != "" {
		cmd.Env = append(cmd.Env, EnvStore+"="+*storeKind)
	}
	if *currency != "" {
		cmd.Env = append(cmd.Env, EnvCurrency+"="+*currency)
	}
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
