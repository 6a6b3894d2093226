package main

import "github.com/danielpatrickdp/selfstate-engine/internal/cli"

func main() {
	cli.Execute()
}
