package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/searchctx/queryqdrant/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "query-qdrant"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	// maxLineBytes caps the size of a single request line. A longer line is
	// treated like any other malformed input: dropped without a response.
	maxLineBytes = 10 * 1024 * 1024
)

// Searcher runs the retrieval pipeline for one query. It is an interface so
// the protocol loop can be tested against a substitute pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]searcher.Result, error)
}

// Server owns the stdio protocol loop and its dependencies.
type Server struct {
	in       io.Reader
	out      io.Writer
	searcher Searcher
	logger   *zap.Logger
}

// NewServer creates a server reading requests from stdin and writing
// responses to stdout.
func NewServer(search Searcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		in:       os.Stdin,
		out:      os.Stdout,
		searcher: search,
		logger:   logger,
	}
}

// Serve reads one request per line until end of input and blocks while doing
// so. Processing is strictly sequential: responses are emitted in request
// order because no request is read before the previous one fully resolves.
// End of input returns nil; a read error is the only failure that terminates
// the loop.
func (s *Server) Serve(ctx context.Context) error {
	reader := bufio.NewReaderSize(s.in, 64*1024)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, tooLong, err := readRequestLine(reader)
		switch {
		case tooLong:
			// Oversized input is malformed input: the line has already been
			// discarded in full, so the loop resyncs on the next one.
			s.logger.Error("dropping oversized request line",
				zap.Int("limit_bytes", maxLineBytes))
		case len(line) > 0:
			s.handleLine(ctx, line)
		}

		if err == io.EOF {
			s.logger.Info("input closed, shutting down")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// readRequestLine reads one newline-terminated line, reassembling the
// fragments ReadLine produces when a line exceeds the reader's buffer. A line
// longer than maxLineBytes is consumed to its end and reported via tooLong,
// leaving the reader positioned at the start of the next line.
func readRequestLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return line, false, err
		}
		if len(line)+len(chunk) > maxLineBytes {
			for isPrefix {
				if _, isPrefix, err = r.ReadLine(); err != nil {
					return nil, true, err
				}
			}
			return nil, true, nil
		}
		line = append(line, chunk...)
		if !isPrefix {
			return line, false, nil
		}
	}
}

// handleLine parses and dispatches a single request line.
func (s *Server) handleLine(ctx context.Context, line []byte) {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		// Documented behavior: the malformed line is dropped and the
		// caller receives no acknowledgment for it.
		s.logger.Error("dropping unparsable request line", zap.Error(err))
		return
	}

	if strings.HasPrefix(req.Method, notificationPrefix) {
		s.logger.Debug("ignoring notification", zap.String("method", req.Method))
		return
	}

	id := req.ID
	if len(id) == 0 {
		id = fallbackID
	}

	result, err := s.dispatch(ctx, &req)
	if err != nil {
		s.logger.Error("request failed",
			zap.String("method", req.Method),
			zap.Error(err))
		s.writeResponse(&rpcResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &rpcError{Code: dispatchErrorCode, Message: err.Error()},
		})
		return
	}

	s.writeResponse(&rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// dispatch routes a request by exact method name.
func (s *Server) dispatch(ctx context.Context, req *rpcRequest) (any, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(), nil
	case "tools/list":
		return s.handleListTools(), nil
	case "tools/call":
		return s.handleCallTool(ctx, req.Params)
	default:
		return nil, fmt.Errorf("unknown method: %s", req.Method)
	}
}

// writeResponse marshals one response as a single line and writes it
// unbuffered, so it reaches the caller immediately.
func (s *Server) writeResponse(resp *rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}
