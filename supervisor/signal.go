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
	"context"
	"os"
	"os/signal"
	"syscall"

	liblog "github.com/sabouaram/reactord/logger"
)

// installSignals wires the POSIX control table onto the master process.
// tableflip already owns SIGHUP (it triggers Upgrade()); every other
// signal is handled here.
func (s *Supervisor) installSignals(ctx context.Context) {
	s.sigCh = make(chan struct{})

	ch := make(chan os.Signal, 8)
	signal.Notify(ch,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP,
		syscall.SIGQUIT,
		syscall.SIGUSR1, syscall.SIGUSR2,
		syscall.SIGIOT, syscall.SIGIO,
		syscall.SIGPIPE,
	)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP:
				s.opts.Logger.Info("received stop signal", nil)
				_ = s.StopAll(context.Background(), false)
				close(s.sigCh)
				return
			case syscall.SIGQUIT:
				s.opts.Logger.Info("received graceful stop signal", nil)
				_ = s.StopAll(context.Background(), true)
				close(s.sigCh)
				return
			case syscall.SIGUSR1:
				s.opts.Logger.Info("received ungraceful reload signal", nil)
				_ = s.ReloadAll(ctx, false)
			case syscall.SIGUSR2:
				s.opts.Logger.Info("received graceful reload signal", nil)
				_ = s.ReloadAll(ctx, true)
			case syscall.SIGIOT:
				if err := s.dumpStatusToFile(); err != nil {
					s.opts.Logger.Error("status dump failed", liblog.Fields{"error": err.Error()})
				}
			case syscall.SIGIO:
				if err := s.dumpConnectionsToFile(); err != nil {
					s.opts.Logger.Error("connection dump failed", liblog.Fields{"error": err.Error()})
				}
			case syscall.SIGPIPE:
				// ignored: a broken pipe on some other fd never tears the
				// master down.
			}
		}
	}()
}
