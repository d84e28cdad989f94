package main

import (
	"log"
	"os"

	"github.com/ruteri/sskr-service/cmd/flags"
	"github.com/urfave/cli/v2"
)

var flagFormat = &cli.StringFlag{
	Name:  "format",
	Value: formatHex,
	Usage: "shard encoding: 'hex' for the raw shard, 'cbor' for the tagged CBOR envelope",
}

var flagServer = &cli.StringFlag{
	Name:  "server",
	Value: "http://127.0.0.1:8080",
	Usage: "sskr service address",
}

var flagAdminID = &cli.StringFlag{
	Name:     "admin-id",
	Required: true,
	Usage:    "admin id as listed in the split plan",
}

var flagAdminPrivkey = &cli.StringFlag{
	Name:  "admin-privkey-file",
	Value: "admin-private.pem",
	Usage: "path to admin private key",
}

var flagAdminPubkey = &cli.StringFlag{
	Name:  "admin-pubkey-file",
	Value: "admin-public.pem",
	Usage: "path to admin public key",
}

func main() {
	app := &cli.App{
		Name:  "sskr",
		Usage: "Split and recover secrets with sharded secret key reconstruction",
		Flags: flags.LogFlags,
		Commands: []*cli.Command{
			splitCommand,
			combineCommand,
			inspectCommand,
			keygenCommand,
			unsealCommand,
			submitCommand,
			statusCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
