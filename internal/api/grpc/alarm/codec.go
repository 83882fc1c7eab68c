package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Field names of the Struct messages.
const (
	fieldTime     = "time"
	fieldImage    = "image"
	fieldVideo    = "video"
	fieldAudio    = "audio"
	fieldHostname = "hostname"
	fieldUsername = "username"
	fieldState    = "state"
	fieldHandleID = "handle_id"
	fieldArmedAt  = "armed_at"
	fieldFiredAt  = "fired_at"
)

// errEmptyRequest is returned when a request message is missing.
var errEmptyRequest = errors.New("request is required")

// ArmRequest is the decoded form of an Arm call.
type ArmRequest struct {
	// Time is when the alarm fires.
	Time domain.Time
	// Media overrides the configured media slot by slot.
	Media domain.Media
	// Actor is who asked, nil when unknown.
	Actor *domain.Actor
}

// EncodeArmRequest converts an arm request to its wire form.
func EncodeArmRequest(req *ArmRequest) (*structpb.Struct, error) {
	if req == nil {
		return nil, errEmptyRequest
	}

	fields := map[string]any{
		fieldTime:  req.Time.String(),
		fieldImage: req.Media.Image,
		fieldVideo: req.Media.Video,
		fieldAudio: req.Media.Audio,
	}

	if req.Actor != nil {
		fields[fieldHostname] = req.Actor.Hostname
		fields[fieldUsername] = req.Actor.Username
	}

	return structpb.NewStruct(fields)
}

// DecodeArmRequest parses and validates an arm request.
func DecodeArmRequest(msg *structpb.Struct) (*ArmRequest, error) {
	if msg == nil {
		return nil, errEmptyRequest
	}

	t, err := domain.ParseTime(stringField(msg, fieldTime))
	if err != nil {
		return nil, err
	}

	media := domain.Media{
		Image: stringField(msg, fieldImage),
		Video: stringField(msg, fieldVideo),
		Audio: stringField(msg, fieldAudio),
	}

	if err = media.Validate(); err != nil {
		return nil, err
	}

	req := &ArmRequest{
		Time:  t,
		Media: media,
	}

	hostname, username := stringField(msg, fieldHostname), stringField(msg, fieldUsername)
	if hostname != "" || username != "" {
		req.Actor = &domain.Actor{
			Hostname: hostname,
			Username: username,
		}
	}

	return req, nil
}

// EncodeStatus converts a status snapshot to its wire form.
func EncodeStatus(st domain.Status) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldState:    st.State.String(),
		fieldHandleID: "",
		fieldTime:     "",
		fieldArmedAt:  formatTimestamp(st.ArmedAt),
		fieldFiredAt:  formatTimestamp(st.FiredAt),
	}

	if !st.Handle.IsZero() {
		fields[fieldHandleID] = st.Handle.ID.String()
		fields[fieldTime] = st.Handle.Time.String()
	}

	return structpb.NewStruct(fields)
}

// DecodeStatus parses a status snapshot.
func DecodeStatus(msg *structpb.Struct) (domain.Status, error) {
	var st domain.Status

	if msg == nil {
		return st, errEmptyRequest
	}

	state, err := domain.ParseState(stringField(msg, fieldState))
	if err != nil {
		return st, err
	}

	st.State = state

	if id := stringField(msg, fieldHandleID); id != "" {
		if st.Handle.ID, err = uuid.Parse(id); err != nil {
			return st, fmt.Errorf("parse handle id: %w", err)
		}

		if st.Handle.Time, err = domain.ParseTime(stringField(msg, fieldTime)); err != nil {
			return st, err
		}
	}

	if st.ArmedAt, err = parseTimestamp(stringField(msg, fieldArmedAt)); err != nil {
		return st, fmt.Errorf("parse armed_at: %w", err)
	}

	if st.FiredAt, err = parseTimestamp(stringField(msg, fieldFiredAt)); err != nil {
		return st, fmt.Errorf("parse fired_at: %w", err)
	}

	return st, nil
}

// ToStatusError maps domain errors to gRPC status errors.
func ToStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidFormat), errors.Is(err, domain.ErrUnsupportedMedia),
		errors.Is(err, errEmptyRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAlreadyArmed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// FromStatusError maps gRPC status errors back to the domain sentinels, so
// callers on the client side can use errors.Is.
func FromStatusError(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		switch {
		case strings.Contains(st.Message(), domain.ErrUnsupportedMedia.Error()):
			return fmt.Errorf("%s: %w", st.Message(), domain.ErrUnsupportedMedia)
		case strings.Contains(st.Message(), domain.ErrInvalidFormat.Error()):
			return fmt.Errorf("%s: %w", st.Message(), domain.ErrInvalidFormat)
		default:
			return err
		}
	case codes.FailedPrecondition:
		return fmt.Errorf("%s: %w", st.Message(), domain.ErrAlreadyArmed)
	default:
		return err
	}
}

func stringField(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339Nano, s)
}
