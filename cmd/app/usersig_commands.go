package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/speakwell/rtcauth/cmd/app/commands"
	"github.com/speakwell/rtcauth/internal/app"
	"github.com/speakwell/rtcauth/internal/config"
	usersigUseCase "github.com/speakwell/rtcauth/internal/usersig/usecase"
)

func getUserSigCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "gen-usersig",
			Usage: "Sign a UserSig with the configured credentials",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Identifier the UserSig is issued for",
				},
				&cli.IntFlag{
					Name:    "expire",
					Aliases: []string{"e"},
					Usage:   "Validity in seconds (defaults to USERSIG_DEFAULT_EXPIRE_SECONDS)",
				},
				&cli.BoolFlag{
					Name:  "compress",
					Usage: "Zlib-compress the token (defaults to USERSIG_COMPRESS)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				secret, err := container.SDKSecret()
				if err != nil {
					return err
				}

				expire := cfg.UserSigDefaultExpire
				if cmd.IsSet("expire") {
					expire = time.Duration(cmd.Int("expire")) * time.Second
				}
				compress := cfg.UserSigCompress
				if cmd.IsSet("compress") {
					compress = cmd.Bool("compress")
				}

				return commands.RunGenUserSig(
					container.UserSigSigner(),
					commands.DefaultIO().Writer,
					commands.GenUserSigParams{
						SDKAppID: cfg.SDKAppID,
						Secret:   secret,
						UserID:   cmd.String("user-id"),
						Expire:   expire,
						Compress: compress,
						Format:   cmd.String("format"),
					},
				)
			},
		},
		{
			Name:  "decode-usersig",
			Usage: "Decode a UserSig and optionally verify it against the configured credentials",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "UserSig to decode",
				},
				&cli.BoolFlag{
					Name:  "verify",
					Value: false,
					Usage: "Check the signature, app id and expiry",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var verifier usersigUseCase.UserSigUseCase
				if cmd.Bool("verify") {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					useCase, err := container.UserSigUseCase()
					if err != nil {
						return err
					}
					verifier = useCase
				}

				return commands.RunDecodeUserSig(
					ctx,
					verifier,
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "encrypt-sdk-secret",
			Usage: "Encrypt the SDK secret key with a KMS key for TENCENT_SDK_SECRET_KEY_CIPHERTEXT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "key-uri",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "SDK secret key to encrypt (defaults to TENCENT_SDK_SECRET_KEY)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()

				keyURI := cmd.String("key-uri")
				if keyURI == "" {
					keyURI = cfg.KMSKeyURI
				}
				secret := cmd.String("secret")
				if secret == "" {
					secret = cfg.SDKSecretKey
				}

				return commands.RunEncryptSDKSecret(ctx, commands.DefaultIO().Writer, keyURI, secret)
			},
		},
		{
			Name:  "hash-admin-key",
			Usage: "Hash an admin key for ADMIN_API_KEY_HASH (generates one when --key is omitted)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Admin key to hash",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)

				return commands.RunHashAdminKey(
					container.AdminKeyService(),
					commands.DefaultIO().Writer,
					cmd.String("key"),
					cmd.String("format"),
				)
			},
		},
	}
}
