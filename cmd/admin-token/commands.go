package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"GreetingServer/internal/auth"
	"GreetingServer/internal/config"
)

type keygenCommand struct {
	privPath string
	pubPath  string
}

func (*keygenCommand) Name() string     { return "keygen" }
func (*keygenCommand) Synopsis() string { return "Generate an RSA key pair for admin tokens" }
func (*keygenCommand) Usage() string {
	return `keygen [-priv path] [-pub path]:
	Write a PEM RSA private key and its public half.

	Point ADMIN_JWT_PUBLIC_KEY at the public file.
`
}

func (cmd *keygenCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.privPath, "priv", "admin.key", "private key output path")
	f.StringVar(&cmd.pubPath, "pub", "admin.pub", "public key output path")
}

func (cmd *keygenCommand) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	privPEM, pubPEM, err := auth.GenerateKeyPair()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := os.WriteFile(cmd.privPath, privPEM, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "write private key: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(cmd.pubPath, pubPEM, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write public key: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("private key: %s\npublic key:  %s\n", cmd.privPath, cmd.pubPath)
	return subcommands.ExitSuccess
}

type signCommand struct {
	keyPath  string
	subject  string
	roles    string
	issuer   string
	audience string
	ttl      time.Duration
}

func (*signCommand) Name() string     { return "sign" }
func (*signCommand) Synopsis() string { return "Print a signed admin token" }
func (*signCommand) Usage() string {
	return `sign [-key path] [-sub name] [-roles a,b] [-ttl 1h]:
	Sign an RS256 token the admin API accepts.

	Usage:
	  curl -H "Authorization: Bearer $(admin-token sign)" http://localhost:$ADMIN_PORT/api/stats
`
}

func (cmd *signCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.keyPath, "key", "admin.key", "private key path")
	f.StringVar(&cmd.subject, "sub", "admin", "token subject")
	f.StringVar(&cmd.roles, "roles", "admin", "comma separated roles")
	f.StringVar(&cmd.issuer, "iss", config.DefaultAdminIssuer, "token issuer")
	f.StringVar(&cmd.audience, "aud", config.DefaultAdminAudience, "token audience")
	f.DurationVar(&cmd.ttl, "ttl", time.Hour, "token lifetime")
}

func (cmd *signCommand) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if cmd.ttl <= 0 {
		fmt.Fprintln(os.Stderr, "ttl must be positive")
		return subcommands.ExitUsageError
	}

	key, err := auth.LoadPrivateKey(cmd.keyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	token, err := auth.IssueToken(key, auth.JWTConfig{Issuer: cmd.issuer, Audience: cmd.audience}, cmd.subject, splitRoles(cmd.roles), cmd.ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println(token)
	return subcommands.ExitSuccess
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
