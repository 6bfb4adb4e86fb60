package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read contents from a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to read")),
	), s.handleReadFile)

	s.mcpServer.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write contents to a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to write")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write to the file")),
	), s.handleWriteFile)

	s.mcpServer.AddTool(mcp.NewTool("append_file",
		mcp.WithDescription("Append contents to a file, creating it if missing"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to append to")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to append to the file")),
	), s.handleAppendFile)

	s.mcpServer.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to delete")),
	), s.handleDeleteFile)

	s.mcpServer.AddTool(mcp.NewTool("move_file",
		mcp.WithDescription("Move or rename a file"),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source file path")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination file path")),
	), s.handleMoveFile)

	s.mcpServer.AddTool(mcp.NewTool("copy_file",
		mcp.WithDescription("Copy a file"),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source file path")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination file path")),
	), s.handleCopyFile)

	s.mcpServer.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Get metadata information about a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file")),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("file_exists",
		mcp.WithDescription("Check whether a file or directory exists"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to check")),
	), s.handleFileExists)

	s.mcpServer.AddTool(mcp.NewTool("list_directory",
		mcp.WithDescription("List contents of a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the directory to list")),
		mcp.WithBoolean("recursive", mcp.Description("Whether to list recursively"), mcp.DefaultBool(false)),
	), s.handleListDirectory)

	s.mcpServer.AddTool(mcp.NewTool("create_directory",
		mcp.WithDescription("Create a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the directory to create")),
		mcp.WithBoolean("recursive", mcp.Description("Whether to create missing parent directories"), mcp.DefaultBool(false)),
	), s.handleCreateDirectory)

	s.mcpServer.AddTool(mcp.NewTool("remove_directory",
		mcp.WithDescription("Remove a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the directory to remove")),
		mcp.WithBoolean("recursive", mcp.Description("Whether to remove contents recursively"), mcp.DefaultBool(false)),
	), s.handleRemoveDirectory)

	s.mcpServer.AddTool(mcp.NewTool("read_lines",
		mcp.WithDescription("Read specific lines from a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to read")),
		mcp.WithNumber("start_line", mcp.Description("First line to read (1-based, inclusive)")),
		mcp.WithNumber("end_line", mcp.Description("Last line to read (1-based, inclusive)")),
		mcp.WithNumber("tail", mcp.Description("Read the last N lines instead of a range")),
	), s.handleReadLines)

	s.mcpServer.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Search for files matching a glob pattern"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to search in")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Glob pattern matched against file names")),
		mcp.WithBoolean("recursive", mcp.Description("Whether to search recursively"), mcp.DefaultBool(true)),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of results to return")),
	), s.handleSearchFiles)

	s.mcpServer.AddTool(mcp.NewTool("grep_file",
		mcp.WithDescription("Search for a regex pattern in file contents"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to search")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression to match against lines")),
		mcp.WithNumber("max_matches", mcp.Description("Maximum number of matches to return")),
		mcp.WithNumber("context_lines", mcp.Description("Lines of context around each match")),
	), s.handleGrepFile)
}

// paramError reports a malformed tool argument.
func paramError(tool string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("invalid parameters for %s: %v", tool, err))
}

// opError reports a failed operation. The typed error message already
// carries the kind prefix.
func opError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// jsonResult renders a structured payload as pretty-printed JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("read_file", err), nil
	}

	content, err := s.reader.ReadString(path)
	if err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("write_file", err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return paramError("write_file", err), nil
	}

	if err := s.writer.WriteString(path, content); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), path)), nil
}

func (s *Server) handleAppendFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("append_file", err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return paramError("append_file", err), nil
	}

	if err := s.writer.AppendString(path, content); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully appended %d bytes to %s", len(content), path)), nil
}

func (s *Server) handleDeleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("delete_file", err), nil
	}

	if err := s.writer.Delete(path); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText("Successfully deleted " + path), nil
}

func (s *Server) handleMoveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return paramError("move_file", err), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return paramError("move_file", err), nil
	}

	if err := s.writer.Move(from, to); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully moved %s to %s", from, to)), nil
}

func (s *Server) handleCopyFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return paramError("copy_file", err), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return paramError("copy_file", err), nil
	}

	bytesCopied, err := s.writer.Copy(from, to)
	if err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully copied %s to %s (%d bytes)", from, to, bytesCopied)), nil
}

func (s *Server) handleGetMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("get_metadata", err), nil
	}

	meta, err := s.reader.Metadata(path)
	if err != nil {
		return opError(err), nil
	}
	return jsonResult(meta)
}

func (s *Server) handleFileExists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("file_exists", err), nil
	}

	exists, err := s.reader.Exists(path)
	if err != nil {
		return opError(err), nil
	}
	return jsonResult(map[string]any{"path": path, "exists": exists})
}

func (s *Server) handleListDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("list_directory", err), nil
	}
	recursive := req.GetBool("recursive", false)

	entries, err := s.reader.ListDirectory(path, recursive)
	if err != nil {
		return opError(err), nil
	}
	return jsonResult(entries)
}

func (s *Server) handleCreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("create_directory", err), nil
	}
	recursive := req.GetBool("recursive", false)

	if err := s.writer.CreateDirectory(path, recursive); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText("Successfully created directory " + path), nil
}

func (s *Server) handleRemoveDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("remove_directory", err), nil
	}
	recursive := req.GetBool("recursive", false)

	if err := s.writer.RemoveDirectory(path, recursive); err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText("Successfully removed directory " + path), nil
}

func (s *Server) handleReadLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("read_lines", err), nil
	}
	startLine := req.GetInt("start_line", 0)
	endLine := req.GetInt("end_line", 0)
	tail := req.GetInt("tail", 0)

	lines, err := s.reader.ReadLines(path, startLine, endLine, tail)
	if err != nil {
		return opError(err), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) handleSearchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("search_files", err), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return paramError("search_files", err), nil
	}
	recursive := req.GetBool("recursive", true)
	maxResults := req.GetInt("max_results", 0)

	results, err := s.reader.SearchFiles(path, pattern, recursive, maxResults)
	if err != nil {
		return opError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) handleGrepFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return paramError("grep_file", err), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return paramError("grep_file", err), nil
	}
	maxMatches := req.GetInt("max_matches", 0)
	contextLines := req.GetInt("context_lines", 0)

	matches, err := s.reader.GrepFile(path, pattern, maxMatches, contextLines)
	if err != nil {
		return opError(err), nil
	}
	return jsonResult(matches)
}
