// Package server speaks MCP (JSON-RPC 2.0 over stdio) and dispatches
// tools/call requests to the tool registry. Stdout carries only protocol
// messages; all logging goes to stderr.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bexmcp/internal/tools"
)

// maxMessageSize bounds one newline-delimited JSON-RPC message.
const maxMessageSize = 16 * 1024 * 1024

// Server serves MCP requests from a reader/writer pair, stdio in production.
type Server struct {
	registry *tools.Registry
	in       io.Reader
	out      io.Writer
	log      *logrus.Logger
	name     string
	version  string
}

// New creates an MCP server over the given streams.
func New(registry *tools.Registry, in io.Reader, out io.Writer, log *logrus.Logger) *Server {
	return &Server{
		registry: registry,
		in:       in,
		out:      out,
		log:      log,
		name:     "bexmcp",
		version:  "1.0.0",
	}
}

// Run reads newline-delimited JSON-RPC messages until EOF or context
// cancellation. Responses are written in request order.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			s.write(&response{JSONRPC: "2.0", ID: json.RawMessage("null"),
				Error: &rpcError{Code: codeParseError, Message: "parse error"}})
			continue
		}

		if req.notification() {
			// notifications expect no response
			s.log.WithField("method", req.Method).Debug("notification ignored")
			continue
		}

		if resp := s.handle(ctx, &req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request stream: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, req *request) *response {
	rid := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"rid": rid, "method": req.Method})

	resp := &response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		log.Info("client connected")
		resp.Result = initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}

	case "ping":
		resp.Result = struct{}{}

	case "tools/list":
		resp.Result = map[string]any{"tools": s.registry.List()}

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: "tools/call needs a tool name and arguments"}
			return resp
		}
		if params.Arguments == nil {
			params.Arguments = map[string]any{}
		}

		log = log.WithField("tool", params.Name)
		log.Info("tool call")

		result := s.registry.Execute(ctx, tools.ToolCall{Name: params.Name, Arguments: params.Arguments})
		if !result.Success {
			log.WithField("error", result.Error).Warn("tool call failed")
			resp.Result = callResult{
				Content: []textContent{{Type: "text", Text: result.Error}},
				IsError: true,
			}
			return resp
		}
		resp.Result = callResult{
			Content: []textContent{{Type: "text", Text: result.Output}},
		}

	default:
		log.Warn("unknown method")
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}

	return resp
}

func (s *Server) write(resp *response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.WithError(err).Error("failed to marshal response")
		data, _ = json.Marshal(&response{JSONRPC: "2.0", ID: resp.ID,
			Error: &rpcError{Code: codeInternalError, Message: "internal error"}})
	}
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}
