// Command rangesetctl evaluates range set expressions and reports the
// claimed and free ranges of configured pools.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var rootArgs struct {
	verbosity int
}

var poolsArgs struct {
	config   string
	prefixes bool
}

func main() {
	if err := newRootCommand().ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *ffcli.Command {
	rootfs := flag.NewFlagSet("rangesetctl", flag.ExitOnError)
	rootfs.IntVar(&rootArgs.verbosity, "v", 0, "log verbosity")

	return &ffcli.Command{
		Name:       "rangesetctl",
		ShortUsage: "rangesetctl [flags] <command> [command flags]",
		ShortHelp:  "Evaluate range sets and inspect range pools",
		FlagSet:    rootfs,
		Options:    []ff.Option{ff.WithEnvVarPrefix("RANGESETCTL")},
		Subcommands: []*ffcli.Command{
			{
				Name:       "eval",
				ShortUsage: "rangesetctl eval [+RANGE | -RANGE | ~]...",
				ShortHelp:  "Apply operations to an integer range set",
				LongHelp: strings.TrimSpace(`
Operations are applied in order to an initially empty set:
  +RANGE  add RANGE, e.g. +[1..3] or +10-20
  -RANGE  remove RANGE, e.g. -(2..3]
  ~       replace the set by its complement
Put -- before the operations when the first one is a removal.
`),
				Exec: func(ctx context.Context, args []string) error {
					return runEval(os.Stdout, args)
				},
			},
			{
				Name:       "pools",
				ShortUsage: "rangesetctl pools -config FILE",
				ShortHelp:  "Load pools from a YAML file and print their claimed and free ranges",
				FlagSet: (func() *flag.FlagSet {
					fs := flag.NewFlagSet("pools", flag.ExitOnError)
					fs.StringVar(&poolsArgs.config, "config", "pools.yaml", "pool configuration file")
					fs.BoolVar(&poolsArgs.prefixes, "prefixes", false, "print the free ids of vlan and vxlan pools as prefixes")
					return fs
				})(),
				Exec: func(ctx context.Context, args []string) error {
					cfg, err := loadConfig(poolsArgs.config)
					if err != nil {
						return err
					}
					return runPools(os.Stdout, cfg, newLogger(rootArgs.verbosity), poolsArgs.prefixes)
				},
			},
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
