package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/zkpauth/internal/logging"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"github.com/dmitrijs2005/zkpauth/internal/server/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AuthService is the business layer behind the five Auth RPCs.
type AuthService interface {
	Register(ctx context.Context, user string, y1, y2 []byte) error
	CreateChallenge(ctx context.Context, user string, r1, r2 []byte) (string, []byte, error)
	VerifyAnswer(ctx context.Context, authID string, s []byte) (string, error)
	SubmitCommitment(ctx context.Context, user string, commitment []byte) (string, error)
	OpenCommitment(ctx context.Context, authID string, r, m []byte) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServer
	address string
	auth    AuthService
	logger  logging.Logger
	limiter *ratelimit.Limiter
	health  *health.Server
}

// NewGRPCServer builds the server. limiter may be nil to disable rate
// limiting.
func NewGRPCServer(a string, l logging.Logger, s AuthService, limiter *ratelimit.Limiter) *GRPCServer {
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{})
	}
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    s,
		limiter: limiter,
		health:  health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestIDInterceptor,
		s.loggingInterceptor,
		metricsInterceptor,
		ratelimit.UnaryServerInterceptor(s.limiter),
	))

	pb.RegisterAuthServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(pb.Auth_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
