package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/example/golox/interpreter"
)

const historyFile = ".golox_history"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	switch len(args) {
	case 0:
		return runREPL()
	case 1:
		return runFile(args[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: golox [script]")
		return 64
	}
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 74
	}

	interp := interpreter.New(os.Stdout)
	if _, err := interp.Eval(string(source)); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var static *interpreter.StaticError
		if errors.As(err, &static) {
			return 65
		}
		return 70
	}
	return 0
}

func runREPL() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	// One interpreter for the whole session; globals persist across lines.
	interp := interpreter.New(os.Stdout)

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 74
		}
		if line == "" {
			return 0
		}
		ln.AppendHistory(line)

		v, err := interp.Eval(line)
		if err != nil {
			// A bare expression like "1 + 2" is not a statement; retry it
			// as one before reporting the original diagnostics.
			var static *interpreter.StaticError
			if errors.As(err, &static) {
				if ev, eerr := interp.EvalExpression(line); eerr == nil {
					fmt.Println(ev.String())
					continue
				}
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if v != nil {
			fmt.Println(v.String())
		}
	}
}
