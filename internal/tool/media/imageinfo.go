package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/gabriel-vasile/mimetype"
)

// ImageInfoTool reports the type, size and dimensions of an image file.
type ImageInfoTool struct {
	policy  pathPolicy
	fileOps fileOps
	config  config.ToolsConfig
}

func NewImageInfoTool(policy pathPolicy, fileOps fileOps, cfg config.ToolsConfig) *ImageInfoTool {
	if policy == nil || fileOps == nil {
		panic("policy and fileOps are required")
	}
	return &ImageInfoTool{policy: policy, fileOps: fileOps, config: cfg}
}

func (t *ImageInfoTool) Name() string { return "image_info" }

func (t *ImageInfoTool) Description() string {
	return "Inspect an image file in the workspace: MIME type, size in bytes and pixel dimensions."
}

func (t *ImageInfoTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"path": {Type: tool.TypeString, Description: "Path to the image, relative to the workspace"},
		},
		Required: []string{"path"},
	}
}

type imageInfoRequest struct {
	Path string `json:"path"`
}

func (t *ImageInfoTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req imageInfoRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if req.Path == "" {
		return tool.Fail(&tool.ValidationError{Field: "path", Reason: "is required"})
	}

	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return tool.Fail(err)
	}
	data, err := t.fileOps.ReadFile(abs, t.config.MaxFileSize)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tool.Failf("file not found: %s", req.Path)
		}
		return tool.Failf("failed to read %s: %v", req.Path, err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return tool.Failf("%s is not an image (detected %s)", req.Path, mime.String())
	}

	out := fmt.Sprintf("%s: %s, %d bytes", req.Path, mime.String(), len(data))
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		out += fmt.Sprintf(", %dx%d pixels", cfg.Width, cfg.Height)
	}
	return tool.OK(out)
}
