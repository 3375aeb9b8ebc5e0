package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/krehermann/exprvm/api"
	"github.com/krehermann/exprvm/compiler"
	"github.com/krehermann/exprvm/config"
	"github.com/krehermann/exprvm/store"
	"github.com/krehermann/exprvm/vm"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	disasm     bool
	out        string
	runFile    string
	serve      bool
	args       []string
}

const usageText = `usage: exprvm [flags] [--] EXPR

EXPR is an integer expression such as "2 * (3 - 4)". It is read from stdin
when omitted. Put -- before an expression that starts with a minus sign,
e.g. exprvm -- -1+2

flags:
`

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("exprvm", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&opts.configPath, "config", "", "TOML config file")
	fs.BoolVar(&opts.disasm, "disasm", false, "Print the compiled program instead of running it")
	fs.StringVar(&opts.out, "o", "", "Write the compiled program to this file")
	fs.StringVar(&opts.runFile, "run", "", "Run a program previously written with -o")
	fs.BoolVar(&opts.serve, "serve", false, "Start the http api")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.args = fs.Args()
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			log.Fatalf("%s", err)
		}
	}

	l, err := cfg.Logger()
	if err != nil {
		log.Fatalf("%s", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	if opts.serve {
		programs := store.NewProgramStore()
		defer programs.Close()
		srv, err := api.NewServer(api.ServerConfig{
			ListenerAddr: cfg.ListenAddr,
			Logger:       l,
			MaxStack:     cfg.MaxStack,
		}, programs)
		if err != nil {
			l.Fatal(err.Error())
		}
		if err := srv.Start(); err != nil {
			l.Fatal(err.Error())
		}
		return
	}

	var p vm.Program
	if opts.runFile != "" {
		p, err = readProgram(opts.runFile)
	} else {
		p, err = compileArgs(opts.args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch {
	case opts.out != "":
		err = writeProgram(opts.out, p)
	case opts.disasm:
		fmt.Print(p.String())
	default:
		err = run(os.Stdout, p, cfg.MaxStack)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// compileArgs compiles the expression given on the command line, or read from
// stdin when there are no arguments.
func compileArgs(args []string) (vm.Program, error) {
	src := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, err
		}
		src = string(b)
	}
	return compiler.CompileString(src)
}

func run(w io.Writer, p vm.Program, maxStack int) error {
	opts := []vm.VMOpt{vm.LoggerOpt(zap.L())}
	if maxStack > 0 {
		opts = append(opts, vm.MaxStackOpt(maxStack))
	}
	machine := vm.NewVM(p, opts...)
	if err := machine.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	// result is the last thing on the stack
	top, err := machine.Stack.Peek()
	if err != nil {
		return fmt.Errorf("run: empty result: %w", err)
	}
	_, err = fmt.Fprintln(w, top)
	return err
}

func writeProgram(path string, p vm.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(vm.NewGobProgramEncoder(f)); err != nil {
		f.Close()
		return fmt.Errorf("encode program: %w", err)
	}
	return f.Close()
}

func readProgram(path string) (vm.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p vm.Program
	if err := p.Decode(vm.NewGobProgramDecoder(f)); err != nil {
		return nil, fmt.Errorf("decode program %s: %w", path, err)
	}
	return p, nil
}
