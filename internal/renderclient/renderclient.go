// Package renderclient calls the remote video-processing pipeline over gRPC.
// Messages travel as google.protobuf.Struct so no generated stubs are needed.
package renderclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"videothingy/clipdeck/internal/clips"
)

// RenderClipsMethod is the full gRPC method name served by the pipeline.
const RenderClipsMethod = "/clipdeck.render.v1.RenderService/RenderClips"

const defaultTimeout = 30 * time.Second

var ErrNoClips = errors.New("no clips to render")

// Request asks the pipeline to render clips of one source video.
type Request struct {
	VideoID    uuid.UUID
	SourcePath string
	Clips      []clips.Clip
}

// Result is the pipeline's acknowledgement.
type Result struct {
	JobID    string `json:"job_id"`
	Accepted int    `json:"accepted"`
}

// Client wraps the gRPC connection to the render service.
type Client struct {
	conn    *grpc.ClientConn
	logger  *logrus.Entry
	Timeout time.Duration
}

// New connects to addr. Extra dial options are appended after the insecure
// transport credentials.
func New(addr string, logger *logrus.Entry, opts ...grpc.DialOption) (*Client, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithFields(logrus.Fields{"component": "renderclient", "addr": addr})

	dial := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dial...)
	if err != nil {
		return nil, fmt.Errorf("failed to create render client for %s: %w", addr, err)
	}
	logger.Info("render client ready")
	return &Client{conn: conn, logger: logger, Timeout: defaultTimeout}, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// RenderClips submits the clips and waits for the pipeline to accept them.
func (c *Client) RenderClips(ctx context.Context, req Request) (*Result, error) {
	if len(req.Clips) == 0 {
		return nil, ErrNoClips
	}
	in, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RenderClipsMethod, in, out); err != nil {
		c.logger.WithError(err).WithField("video_id", req.VideoID).Error("RenderClips failed")
		return nil, fmt.Errorf("render clips: %w", err)
	}
	res := decodeResult(out)
	c.logger.WithFields(logrus.Fields{"video_id": req.VideoID, "job_id": res.JobID, "accepted": res.Accepted}).Info("render accepted")
	return res, nil
}

func encodeRequest(req Request) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(req.Clips))
	for _, c := range req.Clips {
		list = append(list, map[string]interface{}{
			"clip_id":    c.ID.String(),
			"start_time": c.StartTime,
			"end_time":   c.EndTime,
		})
	}
	s, err := structpb.NewStruct(map[string]interface{}{
		"video_id":    req.VideoID.String(),
		"source_path": req.SourcePath,
		"clips":       list,
	})
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}
	return s, nil
}

func decodeResult(s *structpb.Struct) *Result {
	f := s.GetFields()
	return &Result{
		JobID:    f["job_id"].GetStringValue(),
		Accepted: int(f["accepted"].GetNumberValue()),
	}
}
