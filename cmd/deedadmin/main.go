package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/deedprotocol/escrow-backend/api/clients"
	"github.com/deedprotocol/escrow-backend/interfaces"
)

var flagServerAddr = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "Deed registry server address",
}
var flagPrivkeyFile = &cli.StringFlag{
	Name:  "privkey-file",
	Usage: "Path to a hex-encoded secp256k1 private key used to sign requests",
}
var flagCaller = &cli.StringFlag{
	Name:  "caller",
	Usage: "Caller identity sent via header when no private key is given. 40-char hex string",
}

var clientFlags = []cli.Flag{
	flagServerAddr,
	flagPrivkeyFile,
	flagCaller,
}

func newClient(cCtx *cli.Context) (*clients.DeedClient, error) {
	client := &clients.DeedClient{ServerAddr: cCtx.String(flagServerAddr.Name)}

	if path := cCtx.String(flagPrivkeyFile.Name); path != "" {
		key, err := crypto.LoadECDSA(path)
		if err != nil {
			return nil, fmt.Errorf("could not load private key: %w", err)
		}
		client.PrivateKey = key
		return client, nil
	}

	if raw := cCtx.String(flagCaller.Name); raw != "" {
		caller, err := interfaces.NewIdentityFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid caller identity: %w", err)
		}
		client.Caller = caller
		return client, nil
	}

	return nil, fmt.Errorf("either --privkey-file or --caller is required")
}

func main() {
	app := &cli.App{
		Name:  "deedadmin",
		Usage: "Administer notaries and contract ownership of a deed registry",
		Commands: []*cli.Command{
			{
				Name:      "add-notary",
				Usage:     "Authorize a new notary",
				ArgsUsage: "<notary-identity> <jurisdiction>",
				Flags:     clientFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return fmt.Errorf("expected notary identity and jurisdiction arguments")
					}
					notary, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(0))
					if err != nil {
						return fmt.Errorf("invalid notary identity: %w", err)
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					if err := client.AddNotary(notary, cCtx.Args().Get(1)); err != nil {
						return err
					}
					fmt.Printf("notary %s authorized\n", notary)
					return nil
				},
			},
			{
				Name:      "deactivate-notary",
				Usage:     "Revoke a notary's standing, keeping the record",
				ArgsUsage: "<notary-identity>",
				Flags:     clientFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return fmt.Errorf("expected notary identity argument")
					}
					notary, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(0))
					if err != nil {
						return fmt.Errorf("invalid notary identity: %w", err)
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					if err := client.DeactivateNotary(notary); err != nil {
						return err
					}
					fmt.Printf("notary %s deactivated\n", notary)
					return nil
				},
			},
			{
				Name:      "get-notary",
				Usage:     "Show a notary record",
				ArgsUsage: "<notary-identity>",
				Flags:     clientFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return fmt.Errorf("expected notary identity argument")
					}
					notary, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(0))
					if err != nil {
						return fmt.Errorf("invalid notary identity: %w", err)
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					record, err := client.GetNotary(notary)
					if err != nil {
						return err
					}
					fmt.Printf("identity: %s\nactive: %t\njurisdiction: %s\n",
						record.Identity, record.Active, record.Jurisdiction)
					return nil
				},
			},
			{
				Name:      "transfer-ownership",
				Usage:     "Reassign the contract owner",
				ArgsUsage: "<new-owner-identity>",
				Flags:     clientFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return fmt.Errorf("expected new owner identity argument")
					}
					newOwner, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(0))
					if err != nil {
						return fmt.Errorf("invalid owner identity: %w", err)
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					if err := client.TransferOwnership(newOwner); err != nil {
						return err
					}
					fmt.Printf("contract ownership transferred to %s\n", newOwner)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
