package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

/*
InpaintGAN Copyright (C) 2023 Vadim Chizhov
This program is free software: you can redistribute it and/or modify it under the terms of the GNU General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.
This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for more details.
You should have received a copy of the GNU General Public License along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

const name = "inpaint"

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

func main() {
	defer klog.Flush()

	var err = run(os.Args[1:])
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return
	}
	klog.Exitf("%v: %v", domain.Kind(err), err)
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli = NewCommandHandler()
	cli.Add("train", func(args []string) error {
		return runTrain(ctx, args)
	})
	cli.Add("mask", runMask)
	cli.Add("inspect", runInspect)
	return cli.Execute(args)
}

// newFlagSet returns the flag set of a command with the klog flags
// registered, so that -v and -logtostderr work after the command name.
func newFlagSet(command string) *flag.FlagSet {
	var fs = flag.NewFlagSet(name+" "+command, flag.ContinueOnError)
	klog.InitFlags(fs)
	return fs
}

func logBanner() {
	klog.InfoS(name,
		"VersionName", versionName,
		"BuildDate", buildDate,
		"GitRevision", gitRevision,
		"RuntimeVersion", runtime.Version(),
		"GOARCH", runtime.GOARCH,
		"GOOS", runtime.GOOS,
		"NumCPU", runtime.NumCPU(),
	)
}
