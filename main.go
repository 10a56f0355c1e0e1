package main

import (
	"github.com/robert-claypool/dotfiles/cmd"
	"github.com/robert-claypool/dotfiles/internal/logging"
)

func main() {
	defer logging.RecoverPanic("main", nil)

	cmd.Execute()
}
