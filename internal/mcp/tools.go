package mcp

import (
	"context"
	"fmt"
	"image"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splbe/internal/imagecodec"
)

func (s *Server) handleExecuteCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args ExecuteCommandInput) (*mcpsdk.CallToolResult, ExecuteCommandOutput, error) {
	line := strings.TrimSpace(args.Line)
	if line == "" {
		return nil, ExecuteCommandOutput{}, fmt.Errorf("line is required")
	}
	if strings.ContainsAny(line, "\r\n") {
		return nil, ExecuteCommandOutput{}, fmt.Errorf("line must be a single command")
	}
	if s.hasExited() {
		return nil, ExecuteCommandOutput{Exited: true}, fmt.Errorf("back-end has exited")
	}

	s.exec.Lock()
	defer s.exec.Unlock()

	s.backend.Execute(line)
	// Fire-and-forget commands run later on the UI goroutine; wait for them
	// so their errors and events land in this reply.
	if err := s.backend.Do(func() error { return nil }); err != nil {
		s.logger.Debug("sync with ui goroutine failed", "error", err)
	}

	out := ExecuteCommandOutput{Lines: s.drain(), Exited: s.hasExited()}
	if out.Lines == nil {
		out.Lines = []string{}
	}
	return nil, out, nil
}

func (s *Server) handleListObjects(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListObjectsInput) (*mcpsdk.CallToolResult, ListObjectsOutput, error) {
	reg := s.backend.Registry()
	out := ListObjectsOutput{Objects: []ObjectInfo{}}
	err := s.backend.Do(func() error {
		for _, id := range reg.Objects.IDs() {
			o, ok := reg.Object(id)
			if !ok {
				continue
			}
			out.Objects = append(out.Objects, ObjectInfo{ID: id, Kind: o.Kind().String()})
		}
		return nil
	})
	if err != nil {
		return nil, ListObjectsOutput{}, err
	}
	out.Windows = reg.Windows.IDs()
	out.Timers = reg.Timers.IDs()
	out.Sounds = reg.Sounds.IDs()
	return nil, out, nil
}

func (s *Server) handleSnapshotWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapshotWindowInput) (*mcpsdk.CallToolResult, SnapshotWindowOutput, error) {
	id := strings.TrimSpace(args.ID)
	if id == "" {
		return nil, SnapshotWindowOutput{}, fmt.Errorf("id is required")
	}
	if strings.TrimSpace(args.Path) == "" {
		return nil, SnapshotWindowOutput{}, fmt.Errorf("path is required")
	}

	var img image.Image
	err := s.backend.Do(func() error {
		w, ok := s.backend.Registry().Window(id)
		if !ok {
			return fmt.Errorf("window %q: not found", id)
		}
		frame, err := w.Composite()
		if err != nil {
			return fmt.Errorf("render window %q: %w", id, err)
		}
		// The frame is reused by the next repaint.
		img = imagecodec.Clone(frame)
		return nil
	})
	if err != nil {
		return nil, SnapshotWindowOutput{}, err
	}
	if err := imagecodec.Save(img, args.Path); err != nil {
		return nil, SnapshotWindowOutput{}, err
	}

	bounds := img.Bounds()
	return nil, SnapshotWindowOutput{
		Path:   args.Path,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
