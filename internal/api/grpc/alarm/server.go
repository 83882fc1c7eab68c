package alarm

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Arm(ctx context.Context, actor *domain.Actor, t domain.Time, media domain.Media) (domain.Status, error)
	// Cancel disarms the arming with the given ID; uuid.Nil means the current one.
	Cancel(ctx context.Context, handleID uuid.UUID) (domain.Status, error)
	Status(ctx context.Context) domain.Status
	Dismiss(ctx context.Context) (domain.Status, error)
}

// Server implements the AlarmClock gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Arm arms the alarm for the requested time and media.
func (s *Server) Arm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	armRequest, err := DecodeArmRequest(req)
	if err != nil {
		return nil, ToStatusError(err)
	}

	state, err := s.service.Arm(ctx, armRequest.Actor, armRequest.Time, armRequest.Media)
	if err != nil {
		return nil, ToStatusError(err)
	}

	return encodeResponse(state)
}

// Cancel disarms the alarm.
func (s *Server) Cancel(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	handleID := uuid.Nil

	if value := req.GetValue(); value != "" {
		parsed, err := uuid.Parse(value)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid handle id %q", value)
		}

		handleID = parsed
	}

	state, err := s.service.Cancel(ctx, handleID)
	if err != nil {
		return nil, ToStatusError(err)
	}

	return encodeResponse(state)
}

// GetStatus returns the current alarm status.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encodeResponse(s.service.Status(ctx))
}

// Dismiss stops the ringing alarm.
func (s *Server) Dismiss(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state, err := s.service.Dismiss(ctx)
	if err != nil {
		return nil, ToStatusError(err)
	}

	return encodeResponse(state)
}

func encodeResponse(state domain.Status) (*structpb.Struct, error) {
	response, err := EncodeStatus(state)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return response, nil
}
