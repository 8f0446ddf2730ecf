// Package prover drives both proof flows against an Auth server: the
// Chaum-Pedersen group proof and the Pedersen commitment opening. The prover
// never sends its secret in the group flow; in the commitment flow the secret
// is hashed and revealed only at opening time.
package prover

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/cryptox"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/pedersen"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type Client struct {
	conn   *grpc.ClientConn
	client pb.AuthClient
	group  *chaumpedersen.Params
	curve  *pedersen.Params
	src    common.Source
}

// New dials endpoint. group must match the server's group parameters.
func New(endpoint string, group *chaumpedersen.Params, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c := NewWithClient(pb.NewAuthClient(conn), group, pedersen.Default(), common.CryptoSource)
	c.conn = conn
	return c, nil
}

// NewWithClient wraps an existing AuthClient.
func NewWithClient(client pb.AuthClient, group *chaumpedersen.Params, curve *pedersen.Params, src common.Source) *Client {
	return &Client{client: client, group: group, curve: curve, src: src}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Secret derives the group secret x for user from password.
func (c *Client) Secret(password []byte, user string) *big.Int {
	key := cryptox.DeriveSecret(password, user)
	defer common.WipeByteArray(key)
	return new(big.Int).Mod(new(big.Int).SetBytes(key), c.group.Q)
}

// CommitmentSecret derives the value the commitment flow opens for user. It
// is independent of Secret, so an opened commitment reveals nothing about x.
func (c *Client) CommitmentSecret(password []byte, user string) []byte {
	return cryptox.DeriveCommitmentSecret(password, user)
}

// Register sends the public pair (g^x, h^x) for user.
func (c *Client) Register(ctx context.Context, user string, x *big.Int) error {
	y1, y2 := c.group.ComputePublicPair(x)
	_, err := c.client.Register(ctx, &pb.RegisterRequest{
		User: user,
		Y1:   chaumpedersen.Encode(y1),
		Y2:   chaumpedersen.Encode(y2),
	})
	return mapError(err)
}

// LoginGroup runs one Chaum-Pedersen round and returns the session id.
func (c *Client) LoginGroup(ctx context.Context, user string, x *big.Int) (string, error) {
	k, err := c.group.RandomExponent(c.src)
	if err != nil {
		return "", fmt.Errorf("draw nonce: %w", err)
	}
	r1, r2 := c.group.Commitment(k)

	ch, err := c.client.CreateAuthenticationChallenge(ctx, &pb.AuthenticationChallengeRequest{
		User: user,
		R1:   chaumpedersen.Encode(r1),
		R2:   chaumpedersen.Encode(r2),
	})
	if err != nil {
		return "", mapError(err)
	}

	challenge, err := c.group.DecodeExponent(ch.GetC())
	if err != nil {
		return "", fmt.Errorf("server challenge: %w", err)
	}
	s := c.group.ComputeResponse(k, challenge, x)

	resp, err := c.client.VerifyAuthentication(ctx, &pb.AuthenticationAnswerRequest{
		AuthId: ch.GetAuthId(),
		S:      chaumpedersen.Encode(s),
	})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetSessionId(), nil
}

// LoginCommitment commits to secret, then opens the commitment under the
// returned auth_id.
func (c *Client) LoginCommitment(ctx context.Context, user string, secret []byte) (string, error) {
	op, err := c.curve.NewOpening(secret, c.src)
	if err != nil {
		return "", err
	}

	sent, err := c.client.SendPedersenCommitment(ctx, &pb.PedersenCommitmentRequest{
		User:                 user,
		CompressedCommitment: op.Commitment,
	})
	if err != nil {
		return "", mapError(err)
	}

	resp, err := c.client.OpenCommitment(ctx, &pb.CommitmentOpeningRequest{
		AuthId: sent.GetAuthId(),
		R:      op.Blinding,
		M:      op.Value,
	})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetSessionId(), nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.NotFound:
		return ErrNotRegistered
	case codes.InvalidArgument, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
