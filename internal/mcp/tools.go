// Package mcp exposes junction operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/junction/internal/app"
	"github.com/felixgeelhaar/junction/internal/domain/junction"
)

// CreateInput is the input for the junction_create tool.
type CreateInput struct {
	Link      string `json:"link" jsonschema:"required,description=Directory that becomes the junction"`
	Target    string `json:"target" jsonschema:"required,description=Existing directory the junction points at"`
	Overwrite bool   `json:"overwrite,omitempty" jsonschema:"description=Convert an existing directory or retarget an existing junction"`
	Confirm   bool   `json:"confirm" jsonschema:"required,description=Must be true to modify the filesystem (safety confirmation)"`
}

// DeleteInput is the input for the junction_delete tool.
type DeleteInput struct {
	Link    string `json:"link" jsonschema:"required,description=Junction or empty directory to remove"`
	Confirm bool   `json:"confirm" jsonschema:"required,description=Must be true to modify the filesystem (safety confirmation)"`
}

// ChangeOutput is the output of the destructive tools.
type ChangeOutput struct {
	Link    string `json:"link"`
	Target  string `json:"target,omitempty"`
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// LinkInput is the input for the junction_exists and junction_target tools.
type LinkInput struct {
	Link string `json:"link" jsonschema:"required,description=Path to check"`
}

// ExistsOutput is the output for the junction_exists tool.
type ExistsOutput struct {
	Link   string `json:"link"`
	Exists bool   `json:"exists"`
}

// TargetOutput is the output for the junction_target tool.
type TargetOutput struct {
	Link       string `json:"link"`
	IsJunction bool   `json:"is_junction"`
	Target     string `json:"target,omitempty"`
}

// StatusInput is the input for the junction_status tool.
type StatusInput struct {
	Paths []string `json:"paths" jsonschema:"required,description=Paths to inspect"`
}

// StatusOutput is the output for the junction_status tool.
type StatusOutput struct {
	Platform string       `json:"platform"`
	Links    []LinkStatus `json:"links"`
}

// LinkStatus describes one inspected path.
type LinkStatus struct {
	Path   string `json:"path"`
	State  string `json:"state"`
	Target string `json:"target,omitempty"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewServer creates an MCP server named junction with every tool registered.
func NewServer(j *app.Junction, info VersionInfo) *mcp.Server {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "junction",
		Version: info.Version,
	})
	RegisterAll(srv, j)
	return srv
}

// RegisterAll registers every junction tool on srv.
func RegisterAll(srv *mcp.Server, j *app.Junction) {
	registerCreateTool(srv, j)
	registerDeleteTool(srv, j)
	registerExistsTool(srv, j)
	registerTargetTool(srv, j)
	registerStatusTool(srv, j)
}

func registerCreateTool(srv *mcp.Server, j *app.Junction) {
	srv.Tool("junction_create").
		Description("Create an NTFS directory junction at link pointing to target. REQUIRES confirm=true for safety.").
		Destructive().
		Handler(func(ctx context.Context, in CreateInput) (*ChangeOutput, error) {
			if err := ValidateCreateInput(&in); err != nil {
				return nil, err
			}
			out := &ChangeOutput{Link: in.Link, Target: in.Target}
			if !in.Confirm {
				out.Message = "not applied: set confirm=true to create the junction"
				return out, nil
			}

			if err := j.Create(ctx, in.Link, in.Target, in.Overwrite); err != nil {
				return nil, toolError(err)
			}
			out.Applied = true
			out.Message = "junction created"
			return out, nil
		})
}

func registerDeleteTool(srv *mcp.Server, j *app.Junction) {
	srv.Tool("junction_delete").
		Description("Remove the junction or empty directory at link. The target's contents are untouched. REQUIRES confirm=true for safety.").
		Destructive().
		Handler(func(ctx context.Context, in DeleteInput) (*ChangeOutput, error) {
			if err := ValidateLinkPath(in.Link); err != nil {
				return nil, err
			}
			out := &ChangeOutput{Link: in.Link}
			if !in.Confirm {
				out.Message = "not applied: set confirm=true to delete the link"
				return out, nil
			}

			if err := j.Delete(ctx, in.Link); err != nil {
				return nil, toolError(err)
			}
			out.Applied = true
			out.Message = "link deleted"
			return out, nil
		})
}

func registerExistsTool(srv *mcp.Server, j *app.Junction) {
	srv.Tool("junction_exists").
		Description("Report whether a path is an NTFS directory junction.").
		ReadOnly().
		Handler(func(ctx context.Context, in LinkInput) (*ExistsOutput, error) {
			if err := ValidateLinkPath(in.Link); err != nil {
				return nil, err
			}
			ok, err := j.Exists(ctx, in.Link)
			if err != nil {
				return nil, toolError(err)
			}
			return &ExistsOutput{Link: in.Link, Exists: ok}, nil
		})
}

func registerTargetTool(srv *mcp.Server, j *app.Junction) {
	srv.Tool("junction_target").
		Description("Return the directory a junction points at.").
		ReadOnly().
		Handler(func(ctx context.Context, in LinkInput) (*TargetOutput, error) {
			if err := ValidateLinkPath(in.Link); err != nil {
				return nil, err
			}
			target, ok, err := j.Target(ctx, in.Link)
			if err != nil {
				return nil, toolError(err)
			}
			return &TargetOutput{Link: in.Link, IsJunction: ok, Target: target}, nil
		})
}

func registerStatusTool(srv *mcp.Server, j *app.Junction) {
	srv.Tool("junction_status").
		Description("Inspect paths and report whether each is absent, a file, a plain directory or a junction.").
		ReadOnly().
		Handler(func(ctx context.Context, in StatusInput) (*StatusOutput, error) {
			if err := ValidateStatusInput(&in); err != nil {
				return nil, err
			}
			links, err := j.Status(ctx, in.Paths...)
			if err != nil {
				return nil, toolError(err)
			}

			out := &StatusOutput{
				Platform: j.Platform().String(),
				Links:    make([]LinkStatus, 0, len(links)),
			}
			for _, l := range links {
				out.Links = append(out.Links, LinkStatus{Path: l.Path, State: l.State.String(), Target: l.Target})
			}
			return out, nil
		})
}

// toolError appends the domain suggestion so agents see how to recover.
func toolError(err error) error {
	var jerr *junction.Error
	if !errors.As(err, &jerr) || jerr.Suggestion == "" {
		return err
	}
	return fmt.Errorf("%w. %s", err, jerr.Suggestion)
}
