package cmd

import (
	"fmt"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/spf13/cobra"
)

func newRegisterCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the public pair for a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(opts)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			p, err := opts.connect()
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Register(cmd.Context(), opts.User, p.Secret(password, opts.User)); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintf(opts.stdout, "registered %s\n", opts.User)
			return nil
		},
	}
}

func newLoginCmd(opts *Options) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Prove knowledge of the password and print the session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if method != MethodGroup && method != MethodCommitment {
				return fmt.Errorf("unknown method %q (want %s or %s)", method, MethodGroup, MethodCommitment)
			}

			password, err := readPassword(opts)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			p, err := opts.connect()
			if err != nil {
				return err
			}
			defer p.Close()

			var session string
			switch method {
			case MethodGroup:
				session, err = p.LoginGroup(cmd.Context(), opts.User, p.Secret(password, opts.User))
			case MethodCommitment:
				secret := p.CommitmentSecret(password, opts.User)
				defer common.WipeByteArray(secret)
				session, err = p.LoginCommitment(cmd.Context(), opts.User, secret)
			}
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			fmt.Fprintln(opts.stdout, session)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", MethodGroup, "proof method (group, commitment)")
	return cmd
}
