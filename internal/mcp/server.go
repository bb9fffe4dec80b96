// Package mcp exposes the statute change pipeline as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lexflow/statrev/internal/diffengine"
	"github.com/lexflow/statrev/internal/models"
	"github.com/lexflow/statrev/internal/recommend"
	"github.com/lexflow/statrev/internal/review"
	"github.com/lexflow/statrev/internal/statutes"
	"github.com/lexflow/statrev/internal/store"
)

// Server wraps the statrev data layer and exposes it as MCP tools.
type Server struct {
	store store.Store
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store) *Server {
	return &Server{store: s}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("statrev", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.diffTool())
	srv.AddTool(s.recommendTool())
	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.getSessionTool())
	srv.AddTool(s.addCommentTool())
	srv.AddTool(s.approveTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// parseBoth decodes the two statute documents shared by the diff-based tools.
func parseBoth(request mcp.CallToolRequest) (*models.Statute, *models.Statute, error) {
	oldYAML, err := request.RequireString("old_yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("missing required parameter: old_yaml")
	}
	newYAML, err := request.RequireString("new_yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("missing required parameter: new_yaml")
	}

	oldDoc, err := statutes.Parse([]byte(oldYAML))
	if err != nil {
		return nil, nil, fmt.Errorf("old statute: %w", err)
	}
	newDoc, err := statutes.Parse([]byte(newYAML))
	if err != nil {
		return nil, nil, fmt.Errorf("new statute: %w", err)
	}
	return oldDoc, newDoc, nil
}

// statrev_diff
func (s *Server) diffTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_diff",
		mcp.WithDescription("Compare two YAML versions of the same statute. Returns the changes and impact assessment as JSON."),
		mcp.WithString("old_yaml", mcp.Required(), mcp.Description("Old statute document as YAML")),
		mcp.WithString("new_yaml", mcp.Required(), mcp.Description("New statute document as YAML")),
	)
	return tool, s.handleDiff
}

func (s *Server) handleDiff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldDoc, newDoc, err := parseBoth(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := diffengine.Diff(oldDoc, newDoc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(d)
}

// statrev_recommend
func (s *Server) recommendTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_recommend",
		mcp.WithDescription("Diff two YAML versions of a statute and return prioritized review recommendations as JSON. Saved diffs of the same statute feed historical pattern matching."),
		mcp.WithString("old_yaml", mcp.Required(), mcp.Description("Old statute document as YAML")),
		mcp.WithString("new_yaml", mcp.Required(), mcp.Description("New statute document as YAML")),
		mcp.WithString("min_priority", mcp.Description("Only return recommendations at or above: low, medium, high, critical")),
	)
	return tool, s.handleRecommend
}

func (s *Server) handleRecommend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldDoc, newDoc, err := parseBoth(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := diffengine.Diff(oldDoc, newDoc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	historical, _ := s.store.ListDiffsByStatute(ctx, d.StatuteID)
	recs := recommend.Analyze(d, historical)

	if minName := request.GetString("min_priority", ""); minName != "" {
		min, ok := models.ParsePriority(minName)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown priority: %s", minName)), nil
		}
		recs = recommend.FilterByPriority(recs, min)
	}

	return jsonResult(recommend.SortByPriority(recs))
}

// statrev_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_list_sessions",
		mcp.WithDescription("List review sessions. Returns a JSON array with id, statute id, state, severity, and participant count."),
		mcp.WithString("statute", mcp.Description("Filter by statute id")),
		mcp.WithString("state", mcp.Description("Filter by state: in_progress, approved, changes_requested, rejected, cancelled")),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.store.ListReviewSessions(ctx, store.SessionListFilter{
		StatuteID: request.GetString("statute", ""),
		State:     review.State(request.GetString("state", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	type sessionOut struct {
		ID           string `json:"id"`
		StatuteID    string `json:"statute_id"`
		State        string `json:"state"`
		Severity     string `json:"severity"`
		Participants int    `json:"participants"`
		Comments     int    `json:"comments"`
	}

	out := make([]sessionOut, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionOut{
			ID:           sess.ID,
			StatuteID:    sess.Diff.StatuteID,
			State:        string(sess.State),
			Severity:     sess.Diff.Impact.Severity.String(),
			Participants: len(sess.Participants),
			Comments:     len(sess.Comments),
		}
	}
	return jsonResult(out)
}

// statrev_get_session
func (s *Server) getSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_get_session",
		mcp.WithDescription("Get one review session, including its diff, participants, comments, and annotations."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Review session id")),
	)
	return tool, s.handleGetSession
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	sess, err := s.store.GetReviewSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %s", id)), nil
	}
	return jsonResult(sess.Snapshot())
}

// statrev_add_comment
func (s *Server) addCommentTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_add_comment",
		mcp.WithDescription("Add a comment to a review session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Review session id")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Commenting user id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Comment text")),
		mcp.WithString("target", mcp.Description("Change location to anchor to, e.g. precondition[1]")),
	)
	return tool, s.handleAddComment
}

func (s *Server) handleAddComment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	sess, err := s.store.GetReviewSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %s", id)), nil
	}

	c := sess.AddComment(userID, content, request.GetString("target", ""))
	if err := s.store.UpdateReviewSession(ctx, sess); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update session: %v", err)), nil
	}
	return jsonResult(c)
}

// statrev_approve
func (s *Server) approveTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("statrev_approve",
		mcp.WithDescription("Approve a review session. Fails unless the user holds the approver role on the session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Review session id")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Approving user id")),
	)
	return tool, s.handleApprove
}

func (s *Server) handleApprove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}

	sess, err := s.store.GetReviewSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %s", id)), nil
	}

	if err := sess.Approve(userID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.UpdateReviewSession(ctx, sess); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"session_id":%q,"state":%q}`, sess.ID, sess.State)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
