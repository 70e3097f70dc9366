package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

func newShellRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(deviceCommands(e)...)
	root.SetOut(e.out)
	root.SetErr(e.out)
	return root
}

// execLine runs one shell line against the already open device. It returns errQuit on exit or quit.
func (e *env) execLine(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "exit", "quit":
		return errQuit
	}
	root := newShellRoot(e)
	root.SetArgs(args)
	return root.Execute()
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ds323xctl_history")
}

func newShellCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session keeping the driver open between commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.device(); err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      e.cfg.Chip + "> ",
				HistoryFile: historyFile(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				err = e.execLine(line)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(e.out, "error: %v\n", err)
				}
			}
		},
	}
}
