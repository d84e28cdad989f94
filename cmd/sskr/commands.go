package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/sskr-service/api/clients"
	"github.com/ruteri/sskr-service/cmd/flags"
	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/kms"
	"github.com/ruteri/sskr-service/sskr"
	"github.com/urfave/cli/v2"
)

var splitCommand = &cli.Command{
	Name:  "split",
	Usage: "split a secret into grouped shards",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "secret", Usage: "hex encoded secret"},
		&cli.IntFlag{Name: "generate", Usage: "generate a random secret of this many bytes instead of --secret"},
		&cli.StringSliceFlag{Name: "group", Usage: "group as T-of-N, repeated once per group"},
		&cli.IntFlag{Name: "group-threshold", Value: 1, Usage: "number of groups needed to recover"},
		&cli.StringFlag{Name: "plan", Usage: "YAML split plan, replaces --group and --group-threshold"},
		&cli.BoolFlag{Name: "pad", Usage: "pad the secret to a valid length"},
		&cli.StringFlag{Name: "seal-dir", Usage: "with --plan, also write each shard sealed to its holder's key into this directory"},
		flagFormat,
		flags.StoreFlag,
	},
	Action: func(cCtx *cli.Context) error {
		logger := flags.SetupLogger(cCtx)

		secret, err := readSecret(cCtx)
		if err != nil {
			return err
		}
		if cCtx.Bool("pad") {
			if secret, err = sskr.PadSecret(secret); err != nil {
				return err
			}
		}

		var plan *kms.SplitPlan
		groupThreshold := cCtx.Int("group-threshold")
		var groups []sskr.GroupDescriptor
		if path := cCtx.String("plan"); path != "" {
			if plan, err = loadPlan(path); err != nil {
				return err
			}
			groupThreshold, groups = plan.GroupThreshold, plan.Descriptors()
		} else {
			for _, spec := range cCtx.StringSlice("group") {
				group, err := sskr.ParseGroupDescriptor(spec)
				if err != nil {
					return err
				}
				groups = append(groups, group)
			}
		}

		shards, err := sskr.Split(secret, groupThreshold, groups)
		if err != nil {
			return err
		}

		for gi, group := range sskr.GroupShards(shards) {
			fmt.Printf("# group %d (%s)\n", gi+1, groups[gi])
			for _, shard := range group {
				encoded, err := encodeShard(shard, cCtx.String(flagFormat.Name))
				if err != nil {
					return err
				}
				if plan != nil {
					fmt.Printf("%s %s %s\n", shard, plan.Holder(shard.GroupIndex, shard.MemberIndex), encoded)
				} else {
					fmt.Printf("%s %s\n", shard, encoded)
				}
			}
		}

		if dir := cCtx.String("seal-dir"); dir != "" {
			if plan == nil {
				return errors.New("--seal-dir requires --plan")
			}
			if err := writeSealedShards(dir, plan, shards); err != nil {
				return err
			}
		}

		store, err := flags.OpenShardStore(cCtx, logger)
		if err != nil {
			return err
		}
		if store != nil {
			manifestID, _, err := store.StoreShards(cCtx.Context, shards)
			if err != nil {
				return err
			}
			fmt.Printf("# manifest %s\n", manifestID)
		}
		return nil
	},
}

var combineCommand = &cli.Command{
	Name:      "combine",
	Usage:     "recover a secret from shards",
	ArgsUsage: "[shard...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "file", Usage: "read shards from a file, '-' for stdin"},
		&cli.StringFlag{Name: "manifest", Usage: "load shards of a stored split by manifest id"},
		&cli.BoolFlag{Name: "unpad", Usage: "remove padding added by split --pad"},
		flagFormat,
		flags.StoreFlag,
	},
	Action: func(cCtx *cli.Context) error {
		logger := flags.SetupLogger(cCtx)

		var shards []sskr.Shard
		if manifest := cCtx.String("manifest"); manifest != "" {
			manifestID, err := interfaces.NewContentIDFromHex(manifest)
			if err != nil {
				return err
			}
			store, err := flags.OpenShardStore(cCtx, logger)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("--manifest requires --store")
			}
			if shards, _, err = store.LoadShards(cCtx.Context, manifestID); err != nil {
				return err
			}
		} else {
			encoded := cCtx.Args().Slice()
			if path := cCtx.String("file"); path != "" {
				lines, err := readShardFile(path)
				if err != nil {
					return err
				}
				encoded = append(encoded, lines...)
			}
			for i, s := range encoded {
				shard, err := decodeShard(s, cCtx.String(flagFormat.Name))
				if err != nil {
					return fmt.Errorf("shard %d: %w", i, err)
				}
				shards = append(shards, shard)
			}
		}

		secret, err := sskr.Combine(shards)
		if err != nil {
			return err
		}
		if cCtx.Bool("unpad") {
			if secret, err = sskr.UnpadSecret(secret); err != nil {
				return err
			}
		}

		fmt.Println(hex.EncodeToString(secret))
		return nil
	},
}

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "print the metadata of a shard",
	ArgsUsage: "<shard>",
	Flags:     []cli.Flag{flagFormat},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return errors.New("expected exactly one shard")
		}
		shard, err := decodeShard(cCtx.Args().First(), cCtx.String(flagFormat.Name))
		if err != nil {
			return err
		}

		fmt.Println(shard)
		fmt.Printf("identifier:       %04x\n", shard.Identifier)
		fmt.Printf("groups:           %d of %d\n", shard.GroupThreshold, shard.GroupCount)
		fmt.Printf("group:            %d\n", shard.GroupIndex+1)
		fmt.Printf("member threshold: %d\n", shard.MemberThreshold)
		fmt.Printf("member:           %d\n", shard.MemberIndex+1)
		fmt.Printf("secret length:    %d\n", len(shard.Value))
		return nil
	},
}

var keygenCommand = &cli.Command{
	Name:  "keygen",
	Usage: "generate an admin key pair",
	Flags: []cli.Flag{flagAdminPrivkey, flagAdminPubkey},
	Action: func(cCtx *cli.Context) error {
		privPEM, pubPEM, err := cryptoutils.GenerateAdminKeyPair()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cCtx.String(flagAdminPrivkey.Name), privPEM, 0600); err != nil {
			return err
		}
		if err := os.WriteFile(cCtx.String(flagAdminPubkey.Name), pubPEM, 0644); err != nil {
			return err
		}
		fmt.Println(cryptoutils.ComputeFingerprint(pubPEM))
		return nil
	},
}

var unsealCommand = &cli.Command{
	Name:      "unseal",
	Usage:     "decrypt a sealed shard file with the admin key",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{flagAdminPrivkey},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return errors.New("expected exactly one sealed shard file")
		}
		privateKey, err := readAdminKey(cCtx)
		if err != nil {
			return err
		}
		shard, err := readSealedShard(cCtx.Args().First(), privateKey)
		if err != nil {
			return err
		}
		encoded, err := shard.Encode()
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", shard, hex.EncodeToString(encoded))
		return nil
	},
}

var submitCommand = &cli.Command{
	Name:      "submit",
	Usage:     "sign a shard and submit it to a recovery keeper",
	ArgsUsage: "[shard]",
	Flags: []cli.Flag{
		flagServer, flagAdminID, flagAdminPrivkey, flagFormat,
		&cli.StringFlag{Name: "sealed", Usage: "submit the shard from a sealed shard file instead of an argument"},
	},
	Action: func(cCtx *cli.Context) error {
		privateKey, err := readAdminKey(cCtx)
		if err != nil {
			return err
		}

		var shard sskr.Shard
		if path := cCtx.String("sealed"); path != "" {
			shard, err = readSealedShard(path, privateKey)
		} else if cCtx.NArg() == 1 {
			shard, err = decodeShard(cCtx.Args().First(), cCtx.String(flagFormat.Name))
		} else {
			err = errors.New("expected exactly one shard or --sealed")
		}
		if err != nil {
			return err
		}

		client := clients.NewClient(cCtx.String(flagServer.Name), 0).WithAdmin(cCtx.String(flagAdminID.Name), privateKey)
		unlocked, err := client.SubmitShard(context.Background(), shard)
		if err != nil {
			return err
		}

		if unlocked {
			fmt.Println("shard accepted, keeper unlocked")
		} else {
			fmt.Println("shard accepted, waiting for more shards")
		}
		return nil
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "show the recovery progress of a keeper",
	Flags: []cli.Flag{flagServer},
	Action: func(cCtx *cli.Context) error {
		status, err := clients.NewClient(cCtx.String(flagServer.Name), 0).Status(context.Background())
		if err != nil {
			return err
		}

		if status.Unlocked {
			fmt.Println("unlocked")
			return nil
		}
		fmt.Printf("locked, %d groups needed\n", status.GroupThreshold)
		for _, g := range status.Groups {
			fmt.Printf("group %d: %d/%d submitted, %d needed\n", g.Index+1, g.Submitted, g.Members, g.Threshold)
		}
		return nil
	},
}

func readSecret(cCtx *cli.Context) ([]byte, error) {
	if n := cCtx.Int("generate"); n > 0 {
		secret := make([]byte, n)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "generated secret: %s\n", hex.EncodeToString(secret))
		return secret, nil
	}

	s := cCtx.String("secret")
	if s == "" {
		return nil, errors.New("either --secret or --generate is required")
	}
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func readAdminKey(cCtx *cli.Context) (*ecdsa.PrivateKey, error) {
	privPEM, err := os.ReadFile(cCtx.String(flagAdminPrivkey.Name))
	if err != nil {
		return nil, err
	}
	return cryptoutils.ParsePrivateKey(privPEM)
}

// writeSealedShards writes <admin>-<group>-<member>.sealed files, one per shard.
func writeSealedShards(dir string, plan *kms.SplitPlan, shards []sskr.Shard) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	keys := plan.AdminKeys()
	for _, shard := range shards {
		holder := plan.Holder(shard.GroupIndex, shard.MemberIndex)
		encoded, err := shard.Encode()
		if err != nil {
			return err
		}
		sealed, err := cryptoutils.SealForAdmin(keys[holder], encoded)
		if err != nil {
			return fmt.Errorf("failed to seal %s for %s: %w", shard, holder, err)
		}
		name := fmt.Sprintf("%s-%d-%d.sealed", holder, shard.GroupIndex+1, shard.MemberIndex+1)
		if err := os.WriteFile(filepath.Join(dir, name), sealed, 0600); err != nil {
			return err
		}
	}
	return nil
}

func readSealedShard(path string, privateKey *ecdsa.PrivateKey) (sskr.Shard, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return sskr.Shard{}, err
	}
	data, err := cryptoutils.OpenWithAdminKey(privateKey, sealed)
	if err != nil {
		return sskr.Shard{}, err
	}
	return sskr.DecodeShard(data)
}

func loadPlan(path string) (*kms.SplitPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return kms.LoadSplitPlan(f)
}

func readShardFile(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return readShardLines(r)
}
