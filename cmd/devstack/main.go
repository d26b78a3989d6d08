package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/renthaven/renthaven/internal/devstack"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the development containers (database + Authorizer) with the environment
variables from the .env file.

Usage:

devstack [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  devstack -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	// The stack is handed back over a channel: startup runs concurrently
	// with the signal wait, and teardown only sees a fully created stack.
	created := make(chan *devstack.Stack, 1)
	go func() {
		stack, err := devstack.Create(nil)
		if err != nil {
			log.Fatalf("Failed to create development stack: %v\n", err)
		}
		created <- stack
	}()

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating development stack...\n", sig)
	stack := <-created
	stack.Terminate(nil)
}
