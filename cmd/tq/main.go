package main

import (
	"context"

	"github.com/scott-cotton/cli"

	"github.com/vergenzt/yq"
	"github.com/vergenzt/yq/format"
)

func main() {
	cli.MainContext(context.Background(), yq.Command("tq", format.TOMLFormat))
}
