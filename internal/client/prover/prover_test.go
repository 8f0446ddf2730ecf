package prover

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/pedersen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

/*************
 * Fake pb client
 *************/

type fakePB struct {
	// inputs captured
	lastRegisterReq  *pb.RegisterRequest
	lastChallengeReq *pb.AuthenticationChallengeRequest
	lastAnswerReq    *pb.AuthenticationAnswerRequest
	lastCommitReq    *pb.PedersenCommitmentRequest
	lastOpenReq      *pb.CommitmentOpeningRequest

	// outputs preset
	registerErr error

	challengeResp *pb.AuthenticationChallengeResponse
	challengeErr  error

	answerResp *pb.AuthenticationAnswerResponse
	answerErr  error

	commitResp *pb.PedersenCommitmentResponse
	commitErr  error

	openResp *pb.CommitmentOpeningResponse
	openErr  error
}

func (f *fakePB) Register(ctx context.Context, in *pb.RegisterRequest, opts ...grpc.CallOption) (*pb.RegisterResponse, error) {
	f.lastRegisterReq = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &pb.RegisterResponse{}, nil
}

func (f *fakePB) CreateAuthenticationChallenge(ctx context.Context, in *pb.AuthenticationChallengeRequest, opts ...grpc.CallOption) (*pb.AuthenticationChallengeResponse, error) {
	f.lastChallengeReq = in
	return f.challengeResp, f.challengeErr
}

func (f *fakePB) VerifyAuthentication(ctx context.Context, in *pb.AuthenticationAnswerRequest, opts ...grpc.CallOption) (*pb.AuthenticationAnswerResponse, error) {
	f.lastAnswerReq = in
	return f.answerResp, f.answerErr
}

func (f *fakePB) SendPedersenCommitment(ctx context.Context, in *pb.PedersenCommitmentRequest, opts ...grpc.CallOption) (*pb.PedersenCommitmentResponse, error) {
	f.lastCommitReq = in
	return f.commitResp, f.commitErr
}

func (f *fakePB) OpenCommitment(ctx context.Context, in *pb.CommitmentOpeningRequest, opts ...grpc.CallOption) (*pb.CommitmentOpeningResponse, error) {
	f.lastOpenReq = in
	return f.openResp, f.openErr
}

func newToyClient(f *fakePB) *Client {
	return NewWithClient(f, chaumpedersen.ToyParams(), pedersen.Default(), common.CryptoSource)
}

/*************
 * Tests
 *************/

func TestRegister_SendsPublicPair(t *testing.T) {
	f := &fakePB{}
	c := newToyClient(f)

	require.NoError(t, c.Register(context.Background(), "alice", big.NewInt(6)))

	require.NotNil(t, f.lastRegisterReq)
	assert.Equal(t, "alice", f.lastRegisterReq.GetUser())
	// toy group: 4^6 mod 23 = 2, 9^6 mod 23 = 3
	assert.Equal(t, []byte{2}, f.lastRegisterReq.GetY1())
	assert.Equal(t, []byte{3}, f.lastRegisterReq.GetY2())
}

func TestRegister_MapsError(t *testing.T) {
	f := &fakePB{registerErr: status.Error(codes.InvalidArgument, "malformed input")}
	c := newToyClient(f)

	err := c.Register(context.Background(), "", big.NewInt(6))
	assert.ErrorIs(t, err, ErrRejected)
}

func TestLoginGroup_AnswerVerifies(t *testing.T) {
	p := chaumpedersen.ToyParams()
	x := big.NewInt(6)
	y1, y2 := p.ComputePublicPair(x)

	f := &fakePB{
		challengeResp: &pb.AuthenticationChallengeResponse{AuthId: "auth-1", C: []byte{7}},
		answerResp:    &pb.AuthenticationAnswerResponse{SessionId: "sess-1"},
	}
	c := newToyClient(f)

	session, err := c.LoginGroup(context.Background(), "alice", x)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session)

	require.NotNil(t, f.lastChallengeReq)
	require.NotNil(t, f.lastAnswerReq)
	assert.Equal(t, "auth-1", f.lastAnswerReq.GetAuthId())

	r1 := new(big.Int).SetBytes(f.lastChallengeReq.GetR1())
	r2 := new(big.Int).SetBytes(f.lastChallengeReq.GetR2())
	s := new(big.Int).SetBytes(f.lastAnswerReq.GetS())
	assert.True(t, p.Verify(big.NewInt(7), s, r1, r2, y1, y2))
}

func TestLoginGroup_ChallengeErrors(t *testing.T) {
	f := &fakePB{challengeErr: status.Error(codes.NotFound, "user not found")}
	c := newToyClient(f)

	_, err := c.LoginGroup(context.Background(), "ghost", big.NewInt(6))
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Nil(t, f.lastAnswerReq)
}

func TestLoginGroup_RejectedAnswer(t *testing.T) {
	f := &fakePB{
		challengeResp: &pb.AuthenticationChallengeResponse{AuthId: "auth-1", C: []byte{7}},
		answerErr:     status.Error(codes.PermissionDenied, "verification failed"),
	}
	c := newToyClient(f)

	_, err := c.LoginGroup(context.Background(), "alice", big.NewInt(5))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginGroup_OversizedChallenge(t *testing.T) {
	f := &fakePB{
		challengeResp: &pb.AuthenticationChallengeResponse{AuthId: "auth-1", C: []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	c := newToyClient(f)

	_, err := c.LoginGroup(context.Background(), "alice", big.NewInt(5))
	assert.ErrorIs(t, err, common.ErrorMalformedInput)
	assert.Nil(t, f.lastAnswerReq)
}

func TestLoginCommitment_OpensWhatItCommitted(t *testing.T) {
	f := &fakePB{
		commitResp: &pb.PedersenCommitmentResponse{AuthId: "auth-2"},
		openResp:   &pb.CommitmentOpeningResponse{SessionId: "sess-2"},
	}
	c := newToyClient(f)

	session, err := c.LoginCommitment(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "sess-2", session)

	require.NotNil(t, f.lastCommitReq)
	require.NotNil(t, f.lastOpenReq)
	assert.Equal(t, "auth-2", f.lastOpenReq.GetAuthId())
	assert.Equal(t, []byte("secret"), f.lastOpenReq.GetM())

	ok, err := pedersen.Default().Open(f.lastCommitReq.GetCompressedCommitment(), f.lastOpenReq.GetR(), f.lastOpenReq.GetM())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginCommitment_OpeningHidesGroupSecret(t *testing.T) {
	group, err := chaumpedersen.Preset("rfc5114-2048-256")
	require.NoError(t, err)

	f := &fakePB{
		commitResp: &pb.PedersenCommitmentResponse{AuthId: "auth-3"},
		openResp:   &pb.CommitmentOpeningResponse{SessionId: "sess-3"},
	}
	c := NewWithClient(f, group, pedersen.Default(), common.CryptoSource)
	password := []byte("hunter2")

	_, err = c.LoginCommitment(context.Background(), "alice", c.CommitmentSecret(password, "alice"))
	require.NoError(t, err)
	require.NotNil(t, f.lastOpenReq)

	x := c.Secret(password, "alice")
	opened := new(big.Int).SetBytes(f.lastOpenReq.GetM())
	assert.NotEqual(t, 0, x.Cmp(new(big.Int).Mod(opened, group.Q)), "opened value reveals x")

	y1, _ := group.ComputePublicPair(x)
	guess, _ := group.ComputePublicPair(opened)
	assert.NotEqual(t, 0, y1.Cmp(guess), "opened value reproduces y1")
}

func TestLoginCommitment_OpenDenied(t *testing.T) {
	f := &fakePB{
		commitResp: &pb.PedersenCommitmentResponse{AuthId: "auth-2"},
		openErr:    status.Error(codes.PermissionDenied, "permission denied"),
	}
	c := newToyClient(f)

	_, err := c.LoginCommitment(context.Background(), "alice", []byte("secret"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSecret_DeterministicAndReduced(t *testing.T) {
	c := newToyClient(&fakePB{})

	a := c.Secret([]byte("pw"), "alice")
	b := c.Secret([]byte("pw"), "alice")
	assert.Equal(t, 0, a.Cmp(b))
	assert.True(t, a.Sign() >= 0 && a.Cmp(chaumpedersen.ToyParams().Q) < 0)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrUnauthorized},
		{codes.NotFound, ErrNotRegistered},
		{codes.InvalidArgument, ErrRejected},
		{codes.ResourceExhausted, ErrRejected},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := mapError(status.Error(tt.code, "x"))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, mapError(nil))

	err := mapError(status.Error(codes.Internal, "boom"))
	require.Error(t, err)
	for _, e := range []error{ErrUnauthorized, ErrNotRegistered, ErrRejected, ErrUnavailable} {
		assert.False(t, errors.Is(err, e))
	}
}

func TestClose_WithoutConn(t *testing.T) {
	c := newToyClient(&fakePB{})
	assert.NoError(t, c.Close())
}
