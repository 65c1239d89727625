/*
MIT License

Copyright (c) 2022 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package supervisor

import (
	"io"
	"os"
	"syscall"
	"time"

	libcbr "github.com/sabouaram/reactord/cobra"
	libcsl "github.com/sabouaram/reactord/console"
	liblog "github.com/sabouaram/reactord/logger"
	libver "github.com/sabouaram/reactord/version"

	"github.com/fatih/color"
	spfcbr "github.com/spf13/cobra"
)

// dumpSettleDelay is how long the CLI waits after signaling SIGIOT/SIGIO
// before reading the dump file back: the master's signal handler writes it
// asynchronously, so a brief wait avoids reading a stale or half-truncated
// file for the common case of a single local master.
const dumpSettleDelay = 150 * time.Millisecond

// CLI builds the six verb commands (start/stop/restart/reload/
// status/connections) on top of the existing Cobra wrapper's
// non-interactive surface: the wrapper owns version/logger/--help
// plumbing, while each verb is a plain *cobra.Command whose RunE drives
// newFn/pidFile directly, so the interactive bubbletea-backed pieces of
// the wrapper are never touched by the server's own commands.
//
// newFn builds the listener set this binary serves; it is called once,
// from the `start` command, right before RunAll.
func CLI(ver libver.Version, pidFile string, newFn func() (*Supervisor, error)) libcbr.Cobra {
	app := libcbr.New()
	app.SetVersion(ver)
	app.SetLogger(func() liblog.Logger { return liblog.New(os.Getpid()) })
	app.Init()

	var quiet bool
	var daemonize bool
	var graceful bool

	start := app.NewCommand("start", "Start the server", "Start every configured listener", "", "")
	start.Flags().BoolVarP(&daemonize, "daemon", "d", false, "run detached from the controlling terminal")
	start.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the startup banner")
	start.RunE = func(cmd *spfcbr.Command, args []string) error {
		if daemonize {
			if err := Daemonize(os.Args[1:]); err != nil {
				return err
			}
		}
		sup, err := newFn()
		if err != nil {
			return err
		}
		if !quiet {
			printBanner(cmd.OutOrStdout(), ver)
		}
		return sup.RunAll(cmd.Context())
	}

	stop := app.NewCommand("stop", "Stop the running server", "Send the stop signal to the running master", "", "")
	stop.Flags().BoolVarP(&graceful, "graceful", "g", false, "drain connections before exiting")
	stop.RunE = func(cmd *spfcbr.Command, args []string) error {
		sig := syscall.SIGINT
		if graceful {
			sig = syscall.SIGQUIT
		}
		return SignalMaster(pidFile, sig)
	}

	restart := app.NewCommand("restart", "Restart the running server", "Stop then start the server", "", "")
	restart.Flags().BoolVarP(&daemonize, "daemon", "d", false, "run detached from the controlling terminal")
	restart.Flags().BoolVarP(&graceful, "graceful", "g", false, "drain connections before restarting")
	restart.RunE = func(cmd *spfcbr.Command, args []string) error {
		sig := syscall.SIGINT
		if graceful {
			sig = syscall.SIGQUIT
		}
		if err := SignalMaster(pidFile, sig); err != nil {
			return err
		}
		if daemonize {
			return Daemonize(append([]string{"start"}, os.Args[2:]...))
		}
		sup, err := newFn()
		if err != nil {
			return err
		}
		return sup.RunAll(cmd.Context())
	}

	reload := app.NewCommand("reload", "Reload every reloadable listener", "Roll every reloadable listener's workers one at a time", "", "")
	reload.Flags().BoolVarP(&graceful, "graceful", "g", false, "drain a worker before replacing it")
	reload.RunE = func(cmd *spfcbr.Command, args []string) error {
		sig := syscall.SIGUSR1
		if graceful {
			sig = syscall.SIGUSR2
		}
		return SignalMaster(pidFile, sig)
	}

	var live bool
	status := app.NewCommand("status", "Print the master's status dump", "Signal SIGIOT then print the resulting status file", "", "")
	status.Flags().BoolVarP(&live, "live", "d", false, "refresh the dump every 2s, clearing the screen between refreshes")
	status.RunE = func(cmd *spfcbr.Command, args []string) error {
		for {
			if err := SignalMaster(pidFile, syscall.SIGIOT); err != nil {
				return err
			}
			time.Sleep(dumpSettleDelay)
			if !live {
				return catStatusFile(cmd.OutOrStdout(), pidFile+".status")
			}
			clearScreen(cmd.OutOrStdout())
			if err := catStatusFile(cmd.OutOrStdout(), pidFile+".status"); err != nil {
				return err
			}
			select {
			case <-cmd.Context().Done():
				return nil
			case <-time.After(liveRefreshInterval):
			}
		}
	}

	connections := app.NewCommand("connections", "Print the master's connection dump", "Signal SIGIO then print the resulting connection file", "", "")
	connections.RunE = func(cmd *spfcbr.Command, args []string) error {
		if err := SignalMaster(pidFile, syscall.SIGIO); err != nil {
			return err
		}
		time.Sleep(dumpSettleDelay)
		return catStatusFile(cmd.OutOrStdout(), pidFile+".connections")
	}

	app.AddCommand(start, stop, restart, reload, status, connections)
	return app
}

// liveRefreshInterval paces the `status -d` live screen.
const liveRefreshInterval = 2 * time.Second

// printBanner writes the colored startup header.
func printBanner(w io.Writer, ver libver.Version) {
	libcsl.SetColor(libcsl.ColorPrint, int(color.FgCyan), int(color.Bold))
	_, _ = libcsl.ColorPrint.BuffPrintf(w, "%s\n", libcsl.PadCenter(" reactord ", 64, "="))
	_, _ = libcsl.ColorPrint.BuffPrintf(w, "release %s (build %s)\n", ver.GetRelease(), ver.GetBuild())
	_, _ = libcsl.ColorPrint.BuffPrintf(w, "%s\n", libcsl.PadCenter("", 64, "="))
}

// clearScreen resets the terminal between live status refreshes.
func clearScreen(w io.Writer) {
	_, _ = w.Write([]byte("\033[2J\033[H"))
}

func catStatusFile(w io.Writer, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return ErrorDumpReadFailed.Error(err)
	}
	if _, err := w.Write(b); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	return nil
}
