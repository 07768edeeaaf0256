package main

import (
	"embed"

	"github.com/example/sharesheet/cmd"
)

//go:embed all:frontend
var assets embed.FS

func main() {
	cmd.Execute(assets)
}
