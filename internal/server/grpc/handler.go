package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "user", req.GetUser(), "request_id", requestIDFromContext(ctx))

	if err := s.auth.Register(ctx, req.GetUser(), req.GetY1(), req.GetY2()); err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	return &pb.RegisterResponse{}, nil
}

func (s *GRPCServer) CreateAuthenticationChallenge(ctx context.Context, req *pb.AuthenticationChallengeRequest) (*pb.AuthenticationChallengeResponse, error) {

	s.logger.Info(ctx, "Challenge request", "user", req.GetUser(), "request_id", requestIDFromContext(ctx))

	authID, c, err := s.auth.CreateChallenge(ctx, req.GetUser(), req.GetR1(), req.GetR2())
	if err != nil {
		return nil, s.toStatus(ctx, "create challenge", err)
	}

	return &pb.AuthenticationChallengeResponse{AuthId: authID, C: c}, nil
}

func (s *GRPCServer) VerifyAuthentication(ctx context.Context, req *pb.AuthenticationAnswerRequest) (*pb.AuthenticationAnswerResponse, error) {

	s.logger.Info(ctx, "Verification request", "auth_id", req.GetAuthId(), "request_id", requestIDFromContext(ctx))

	session, err := s.auth.VerifyAnswer(ctx, req.GetAuthId(), req.GetS())
	if err != nil {
		return nil, s.toStatus(ctx, "verify", err)
	}

	return &pb.AuthenticationAnswerResponse{SessionId: session}, nil
}

func (s *GRPCServer) SendPedersenCommitment(ctx context.Context, req *pb.PedersenCommitmentRequest) (*pb.PedersenCommitmentResponse, error) {

	s.logger.Info(ctx, "Commitment request", "user", req.GetUser(), "request_id", requestIDFromContext(ctx))

	authID, err := s.auth.SubmitCommitment(ctx, req.GetUser(), req.GetCompressedCommitment())
	if err != nil {
		return nil, s.toStatus(ctx, "submit commitment", err)
	}

	return &pb.PedersenCommitmentResponse{AuthId: authID}, nil
}

func (s *GRPCServer) OpenCommitment(ctx context.Context, req *pb.CommitmentOpeningRequest) (*pb.CommitmentOpeningResponse, error) {

	s.logger.Info(ctx, "Commitment opening request", "auth_id", req.GetAuthId(), "request_id", requestIDFromContext(ctx))

	session, err := s.auth.OpenCommitment(ctx, req.GetAuthId(), req.GetR(), req.GetM())
	if err != nil {
		return nil, s.toStatus(ctx, "open commitment", err)
	}

	return &pb.CommitmentOpeningResponse{SessionId: session}, nil
}

// toStatus maps a service error to its gRPC status. Messages name the
// category only, never the failing sub-check.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	var st *status.Status
	switch {
	case errors.Is(err, common.ErrorMalformedInput):
		st = status.New(codes.InvalidArgument, "malformed input")
	case errors.Is(err, common.ErrorNotFound):
		st = status.New(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrorUnauthenticated):
		st = status.New(codes.Unauthenticated, "unknown or expired auth_id")
	case errors.Is(err, common.ErrorVerificationFailed):
		st = status.New(codes.PermissionDenied, "verification failed")
	case errors.Is(err, common.ErrorPermissionDenied):
		st = status.New(codes.PermissionDenied, "permission denied")
	default:
		s.logger.Error(ctx, op+" failed", "error", err.Error(), "request_id", requestIDFromContext(ctx))
		return status.Error(codes.Internal, "internal error")
	}

	s.logger.Warn(ctx, op+" rejected", "code", st.Code().String(), "request_id", requestIDFromContext(ctx))
	return st.Err()
}
