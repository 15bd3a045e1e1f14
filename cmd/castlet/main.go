package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/castlet-lang/castlet/castlet"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return runREPL()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only compile the program without executing")
	dump := fs.Bool("dump", false, "print class and instance structure after the run")
	steps := fs.Int("steps", 0, "override the step quota")
	instances := fs.Int("instances", 0, "override the instance cap")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		return errors.New("castlet run: program path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	engine := castlet.NewEngine(castlet.Config{StepQuota: *steps, MaxInstances: *instances})
	script, err := engine.Compile(string(input))
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	if *checkOnly {
		return nil
	}

	result, err := script.Run(context.Background(), castlet.RunOptions{Reporter: stdoutReporter{}})
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if *dump {
		fmt.Println()
		fmt.Print(script.DescribeClasses())
		fmt.Print(result.DescribeInstances())
	}
	return nil
}

// stdoutReporter prints each call row as space-joined integers and each `is`
// verdict as IS / ISN'T, in program order.
type stdoutReporter struct{}

func (stdoutReporter) MethodCalled(variable, method string, values []int64) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	fmt.Println(strings.Join(parts, " "))
}

func (stdoutReporter) TypeChecked(variable, class string, is bool) {
	if is {
		fmt.Println("IS")
	} else {
		fmt.Println("ISN'T")
	}
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <program>   compile and execute a program")
	fmt.Fprintln(os.Stderr, "  repl                    start an interactive session")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    only compile the program without executing")
	fmt.Fprintln(os.Stderr, "  -dump")
	fmt.Fprintln(os.Stderr, "    print class and instance structure after the run")
	fmt.Fprintln(os.Stderr, "  -steps <n>")
	fmt.Fprintln(os.Stderr, "    override the step quota")
	fmt.Fprintln(os.Stderr, "  -instances <n>")
	fmt.Fprintln(os.Stderr, "    override the instance cap")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
