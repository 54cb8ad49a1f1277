package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/cli"
	"github.com/supersonicads/spotcli/command"
	"github.com/supersonicads/spotcli/version"
)

func main() {
	// create context to handle signals
	ctx, cancel := context.WithCancel(context.Background())

	signalCn := make(chan os.Signal, 1)
	signal.Notify(signalCn, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCn
		cancel()
	}()

	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	meta := command.Meta{Ui: ui, Ctx: ctx}

	c := cli.NewCLI("spotcli", version.GetHumanVersion())
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"list": func() (cli.Command, error) {
			return &command.ListCommand{Meta: meta}, nil
		},
		"roll": func() (cli.Command, error) {
			return &command.RollCommand{Meta: meta}, nil
		},
		"run": func() (cli.Command, error) {
			return &command.RunCommand{Meta: meta}, nil
		},
		"scale up": func() (cli.Command, error) {
			return &command.ScaleCommand{Meta: meta, Direction: "up"}, nil
		},
		"scale down": func() (cli.Command, error) {
			return &command.ScaleCommand{Meta: meta, Direction: "down"}, nil
		},
		"status": func() (cli.Command, error) {
			return &command.StatusCommand{Meta: meta}, nil
		},
		"suspend": func() (cli.Command, error) {
			return &command.SuspendCommand{Meta: meta}, nil
		},
		"unsuspend": func() (cli.Command, error) {
			return &command.UnsuspendCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Meta: meta}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
