package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"mahstore/pkg/config"
	"mahstore/pkg/store"
)

func main() {
	var promptFlag = flag.Bool("c", true, "use prompt?")
	var dirFlag = flag.String("dir", config.DefaultDataDir, "directory holding relation files")
	flag.Parse()

	s, err := store.Open(*dirFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer s.Close()

	prompt := config.GetPrompt(*promptFlag)
	r := store.Repl(s)
	r.Run(uuid.New(), prompt, nil, nil)
}
