// Package cmd implements the zkpauth client command line: registering a
// password-derived public pair and logging in with either proof flow.
package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/dmitrijs2005/zkpauth/internal/client/prover"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/spf13/cobra"
)

// Login methods.
const (
	MethodGroup      = "group"
	MethodCommitment = "commitment"
)

// Prover is the part of prover.Client the commands use.
type Prover interface {
	Secret(password []byte, user string) *big.Int
	CommitmentSecret(password []byte, user string) []byte
	Register(ctx context.Context, user string, x *big.Int) error
	LoginGroup(ctx context.Context, user string, x *big.Int) (string, error)
	LoginCommitment(ctx context.Context, user string, secret []byte) (string, error)
	Close() error
}

// Dialer connects a Prover to server using group.
type Dialer func(server string, group *chaumpedersen.Params) (Prover, error)

func dialGRPC(server string, group *chaumpedersen.Params) (Prover, error) {
	return prover.New(server, group)
}

// Options holds the flags shared by all commands.
type Options struct {
	Server        string
	Group         string
	User          string
	PasswordStdin bool

	dial   Dialer
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd builds the command tree. dial may be nil to use gRPC.
func NewRootCmd(dial Dialer) *cobra.Command {
	if dial == nil {
		dial = dialGRPC
	}
	opts := &Options{dial: dial}

	root := &cobra.Command{
		Use:   "zkpauth",
		Short: "zkpauth client - password login without sending the password",
		Long: `zkpauth registers a public pair derived from your password and later
proves knowledge of the password with a Chaum-Pedersen proof or a Pedersen
commitment opening. The password itself never leaves this machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
		},
	}

	root.PersistentFlags().StringVarP(&opts.Server, "server", "a", "localhost:50051", "server address")
	root.PersistentFlags().StringVarP(&opts.Group, "group", "g", chaumpedersen.PresetRFC5114_2048,
		"group preset, must match the server (toy, rfc5114-1024-160, rfc5114-2048-256)")
	root.PersistentFlags().StringVarP(&opts.User, "user", "u", "", "user name")
	root.PersistentFlags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "read the password from stdin")
	_ = root.MarkPersistentFlagRequired("user")

	root.AddCommand(newRegisterCmd(opts))
	root.AddCommand(newLoginCmd(opts))

	return root
}

// Execute runs the client and exits non-zero on failure.
func Execute() {
	root := NewRootCmd(nil)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// connect resolves the group and dials the server.
func (o *Options) connect() (Prover, error) {
	group, err := chaumpedersen.Preset(o.Group)
	if err != nil {
		return nil, err
	}
	return o.dial(o.Server, group)
}
