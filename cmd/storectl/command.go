package main

import (
	"fmt"
	"io"
	"sort"
)

type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(env *Env, args []string) error
}

type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

func (r *Registry) Execute(env *Env, args []string) error {
	if len(args) < 1 {
		r.PrintHelp(env.Out)
		return fmt.Errorf("no command specified")
	}

	switch args[0] {
	case "help", "-h", "--help":
		r.PrintHelp(env.Out)
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		r.PrintHelp(env.Err)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd.Run(env, args[1:])
}

func (r *Registry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "storectl - storefront API client")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    storectl [-api URL] [-state FILE] <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "    %-10s %s\n", name, r.commands[name].Description)
	}
}
