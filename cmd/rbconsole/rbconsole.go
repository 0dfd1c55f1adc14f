package main

import (
	"flag"
	"fmt"
	"log"
	"mcu-ringbuf/pkg/rbconfig"
	"mcu-ringbuf/pkg/rbconsole"
	"mcu-ringbuf/pkg/repl"
	"os"
)

var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

func main() {
	// 0. read .rbc file from command line; without one use the defaults
	arg := flag.String("config", "", "specify the config file")
	history := flag.String("history", "", "readline history file")
	flag.Parse()

	config := &rbconfig.DefaultConfig
	if *arg != "" {
		parsed, err := rbconfig.ParseConfig(*arg)
		if err != nil {
			fmt.Println(err)
			fmt.Println("usage: rbconsole [--config <rbc file>] [--history <file>]")
			os.Exit(1)
		}
		config = parsed
	}

	// 1. allocate the buffer and bind the commands to it
	console, err := rbconsole.New(config)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	r := rbconsole.ConsoleRepl(console)
	logger.Printf("Ring buffer ready: %d slots, overflow %s\n", console.Buffer().Cap(), console.Buffer().Policy())

	// 2. run the repl
	if err := r.Run(repl.RunConfig{Prompt: config.Prompt, HistoryFile: *history}); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}
