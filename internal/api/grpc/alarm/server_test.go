package alarm

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// fakeService implements the alarm Service interface for unit testing the transport.
type fakeService struct {
	// status is returned by every call.
	status domain.Status
	// armErr is returned by Arm when set.
	armErr error
	// lastActor is the actor passed to the last Arm.
	lastActor *domain.Actor
	// lastMedia is the media passed to the last Arm.
	lastMedia domain.Media
	// canceled is the handle ID passed to the last Cancel.
	canceled uuid.UUID
	// dismissed counts Dismiss calls.
	dismissed int
}

// Arm records the request and arms the fake status.
func (f *fakeService) Arm(_ context.Context, actor *domain.Actor, t domain.Time, media domain.Media) (domain.Status, error) {
	if f.armErr != nil {
		return domain.Status{}, f.armErr
	}

	f.lastActor = actor
	f.lastMedia = media
	f.status = domain.Status{
		State:   domain.Armed,
		Handle:  domain.NewHandle(t),
		ArmedAt: time.Now(),
	}

	return f.status, nil
}

// Cancel records the handle ID and goes idle.
func (f *fakeService) Cancel(_ context.Context, handleID uuid.UUID) (domain.Status, error) {
	f.canceled = handleID
	f.status = domain.Status{}

	return f.status, nil
}

// Status returns the fake status.
func (f *fakeService) Status(context.Context) domain.Status { return f.status }

// Dismiss counts the call and goes idle.
func (f *fakeService) Dismiss(context.Context) (domain.Status, error) {
	f.dismissed++
	f.status = domain.Status{}

	return f.status, nil
}

// dialBuffered serves srv over an in-memory listener and returns a connection to it.
func dialBuffered(t *testing.T, srv AlarmClockServer) *grpc.ClientConn {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	RegisterAlarmClockServer(grpcServer, srv)

	go func() {
		_ = grpcServer.Serve(listener) //nolint:errcheck // Stopped by cleanup.
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
	})

	return conn
}

// TestServer_Arm_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_Arm_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.Arm(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, fields := range []map[string]any{
		{},
		{"time": "25:00"},
		{"time": "7:30"},
		{"time": "07:30", "audio": "song.ogg"},
	} {
		req, err := structpb.NewStruct(fields)
		require.NoError(t, err)

		_, err = s.Arm(context.Background(), req)
		require.Equal(t, codes.InvalidArgument, status.Code(err), "fields %v", fields)
	}

	_, err = s.Cancel(context.Background(), wrapperspb.String("not-a-uuid"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Arm_AlreadyArmed maps the domain error to FailedPrecondition and back.
func TestServer_Arm_AlreadyArmed(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeService{armErr: domain.ErrAlreadyArmed})

	req, err := EncodeArmRequest(&ArmRequest{Time: domain.Time{Hour: 7, Minute: 30}})
	require.NoError(t, err)

	_, err = s.Arm(context.Background(), req)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
	require.ErrorIs(t, FromStatusError(err), domain.ErrAlreadyArmed)
}

// TestFromStatusError maps codes back to domain sentinels.
func TestFromStatusError(t *testing.T) {
	t.Parallel()

	require.NoError(t, FromStatusError(nil))
	require.ErrorIs(t, FromStatusError(ToStatusError(domain.ErrInvalidFormat)), domain.ErrInvalidFormat)
	require.ErrorIs(t, FromStatusError(ToStatusError(domain.ErrUnsupportedMedia)), domain.ErrUnsupportedMedia)
	require.Equal(t, codes.Internal, status.Code(FromStatusError(ToStatusError(context.Canceled))))

	// Other invalid arguments keep their status.
	err := FromStatusError(status.Error(codes.InvalidArgument, `invalid handle id "tomorrow"`))
	require.NotErrorIs(t, err, domain.ErrInvalidFormat)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.NotErrorIs(t, FromStatusError(ToStatusError(errEmptyRequest)), domain.ErrInvalidFormat)
}

// TestServer_Roundtrip exercises every method through a real gRPC stack.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	service := new(fakeService)
	conn := dialBuffered(t, NewServer(service))
	ctx := context.Background()

	req, err := EncodeArmRequest(&ArmRequest{
		Time:  domain.Time{Hour: 6, Minute: 5},
		Media: domain.Media{Audio: "/music/rooster.mp3"},
		Actor: &domain.Actor{Hostname: "bedroom", Username: "me"},
	})
	require.NoError(t, err)

	// Arm.
	armed := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, ArmMethod, req, armed))

	st, err := DecodeStatus(armed)
	require.NoError(t, err)
	require.Equal(t, domain.Armed, st.State)
	require.Equal(t, "06:05", st.Handle.Time.String())
	require.Equal(t, service.status.Handle, st.Handle)
	require.Equal(t, "/music/rooster.mp3", service.lastMedia.Audio)
	require.Equal(t, &domain.Actor{Hostname: "bedroom", Username: "me"}, service.lastActor)
	require.WithinDuration(t, service.status.ArmedAt, st.ArmedAt, time.Microsecond)

	// Status.
	current := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, GetStatusMethod, new(emptypb.Empty), current))

	st, err = DecodeStatus(current)
	require.NoError(t, err)
	require.Equal(t, domain.Armed, st.State)

	// Cancel.
	canceled := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, CancelMethod, wrapperspb.String(st.Handle.ID.String()), canceled))
	require.Equal(t, st.Handle.ID, service.canceled)

	st, err = DecodeStatus(canceled)
	require.NoError(t, err)
	require.Equal(t, domain.Idle, st.State)
	require.True(t, st.Handle.IsZero())

	// Dismiss.
	require.NoError(t, conn.Invoke(ctx, DismissMethod, new(emptypb.Empty), new(structpb.Struct)))
	require.Equal(t, 1, service.dismissed)

	// Errors keep their codes across the wire.
	bad, err := structpb.NewStruct(map[string]any{"time": "noon"})
	require.NoError(t, err)

	err = conn.Invoke(ctx, ArmMethod, bad, new(structpb.Struct))
	require.ErrorIs(t, FromStatusError(err), domain.ErrInvalidFormat)

	err = conn.Invoke(ctx, CancelMethod, wrapperspb.String("not-a-handle"), new(structpb.Struct))
	require.NotErrorIs(t, FromStatusError(err), domain.ErrInvalidFormat)
	require.Equal(t, codes.InvalidArgument, status.Code(FromStatusError(err)))
}
