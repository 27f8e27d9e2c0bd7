package main

import (
	"log"

	"github.com/uatas-cs/complaint-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
