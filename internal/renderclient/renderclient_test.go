package renderclient

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"videothingy/clipdeck/internal/clips"
)

// startPipeline serves RenderClips on an in-memory listener. handle gets the
// decoded request.
func startPipeline(t *testing.T, handle func(req *structpb.Struct) (*structpb.Struct, error)) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnknownServiceHandler(func(_ interface{}, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		if method != RenderClipsMethod {
			return status.Errorf(codes.Unimplemented, "unknown method %s", method)
		}
		req := new(structpb.Struct)
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		resp, err := handle(req)
		if err != nil {
			return err
		}
		return stream.SendMsg(resp)
	}))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	c, err := New("passthrough:///bufnet", nil, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRenderClips(t *testing.T) {
	var got *structpb.Struct
	c := startPipeline(t, func(req *structpb.Struct) (*structpb.Struct, error) {
		got = req
		n := len(req.GetFields()["clips"].GetListValue().GetValues())
		return structpb.NewStruct(map[string]interface{}{"job_id": "render-1", "accepted": n})
	})

	videoID := uuid.New()
	res, err := c.RenderClips(context.Background(), Request{
		VideoID:    videoID,
		SourcePath: "/media/talk.mp4",
		Clips: []clips.Clip{
			{ID: uuid.New(), StartTime: 0, EndTime: 10},
			{ID: uuid.New(), StartTime: 30, EndTime: 45.5},
		},
	})
	if err != nil {
		t.Fatalf("RenderClips: %v", err)
	}
	if res.JobID != "render-1" || res.Accepted != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	f := got.GetFields()
	if f["video_id"].GetStringValue() != videoID.String() || f["source_path"].GetStringValue() != "/media/talk.mp4" {
		t.Fatalf("unexpected request %v", got)
	}
	second := f["clips"].GetListValue().GetValues()[1].GetStructValue().GetFields()
	if second["end_time"].GetNumberValue() != 45.5 {
		t.Fatalf("end_time = %v", second["end_time"])
	}
}

func TestRenderClipsErrors(t *testing.T) {
	c := startPipeline(t, func(*structpb.Struct) (*structpb.Struct, error) {
		return nil, status.Error(codes.Unavailable, "pipeline busy")
	})

	if _, err := c.RenderClips(context.Background(), Request{VideoID: uuid.New()}); !errors.Is(err, ErrNoClips) {
		t.Fatalf("expected ErrNoClips, got %v", err)
	}

	_, err := c.RenderClips(context.Background(), Request{
		VideoID: uuid.New(),
		Clips:   []clips.Clip{{ID: uuid.New(), StartTime: 0, EndTime: 5}},
	})
	if status.Code(errors.Unwrap(err)) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}
