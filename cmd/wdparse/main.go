package main

import (
	"log"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/wdmigrate/cmd"
)

func main() {
	if err := commandeer.Run(cmd.NewMain()); err != nil {
		log.Fatal(err)
	}
}
