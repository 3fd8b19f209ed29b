package main

import (
	"fmt"
	"os"
	sys "os"
)

func main() {
	if len(os.Args) > 1 {
		os.Exit(1) // want "os.Exit"
	}
	for range 1 {
		sys.Exit(2) // want "os.Exit"
	}

	defer os.Exit(0)
	go func() {
		os.Exit(3)
	}()
	fail := func() { os.Exit(4) }
	_ = fail

	fmt.Println("ok")
}

func helper() {
	os.Exit(5)
}
