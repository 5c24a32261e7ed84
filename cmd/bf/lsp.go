package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/mgomes/tapescript/bf"
)

const (
	severityError   = 1
	severityWarning = 2
)

var instructionDocs = []struct {
	symbol bf.TokenType
	doc    string
}{
	{bf.TokenIncPtr, "move the pointer one cell right"},
	{bf.TokenDecPtr, "move the pointer one cell left"},
	{bf.TokenIncVal, "increment the current cell, wrapping 255 to 0"},
	{bf.TokenDecVal, "decrement the current cell, wrapping 0 to 255"},
	{bf.TokenOutput, "write the current cell as one byte"},
	{bf.TokenInput, "read one byte into the current cell; unchanged when input is exhausted"},
	{bf.TokenOpen, "start a loop that runs while the current cell is nonzero"},
	{bf.TokenClose, "end the innermost loop"},
}

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	docs   map[string]string
}

func lspCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("bf lsp: unexpected argument %q", args[0])
	}
	server := &lspServer{
		reader: bufio.NewReader(os.Stdin),
		writer: bufio.NewWriter(os.Stdout),
		docs:   make(map[string]string),
	}
	return server.serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"capabilities": map[string]any{
						"textDocumentSync": 1,
						"hoverProvider":    true,
						"completionProvider": map[string]any{
							"resolveProvider": false,
						},
					},
				},
			},
		}
	case "initialized", "exit":
		return nil
	case "shutdown":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{
			publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text),
		}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		if len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{
			publishDiagnostics(params.TextDocument.URI, latest),
		}
	case "textDocument/completion":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"isIncomplete": false,
					"items":        completionItems(),
				},
			},
		}
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{
				{
					JSONRPC: "2.0",
					ID:      incoming.ID,
					Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
				},
			}
		}
		source := s.docs[params.TextDocument.URI]
		doc, ok := instructionAt(source, params.Position.Line, params.Position.Character)
		if !ok {
			return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"contents": map[string]any{
						"kind":  "markdown",
						"value": doc,
					},
				},
			},
		}
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error: &lspResponseError{
					Code:    -32601,
					Message: "method not found",
				},
			},
		}
	}
}

func publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source),
		},
	}
}

// diagnosticsForSource reports the parse failure when there is one and the
// analyzer warnings otherwise.
func diagnosticsForSource(source string) []map[string]any {
	program, err := bf.Parse(source)
	if err != nil {
		var lexErr *bf.LexerError
		var parseErr *bf.ParseError
		switch {
		case errors.As(err, &lexErr):
			return []map[string]any{newDiagnostic(source, lexErr.Pos(), severityError, lexErr.Message)}
		case errors.As(err, &parseErr):
			return []map[string]any{newDiagnostic(source, parseErr.Pos, severityError, parseErr.Kind.String())}
		default:
			return []map[string]any{newDiagnostic(source, bf.Position{Line: 1, Column: 1}, severityError, err.Error())}
		}
	}

	warnings := analyzeProgram(program)
	out := make([]map[string]any, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, newDiagnostic(source, warning.Pos, severityWarning, warning.Message))
	}
	return out
}

// newDiagnostic converts pos, whose column counts runes, into an LSP range,
// whose character counts UTF-16 code units.
func newDiagnostic(source string, pos bf.Position, severity int, message string) map[string]any {
	line := max(0, pos.Line-1)
	runes, _ := lineRunes(source, line)
	character := utf16Column(runes, max(0, pos.Column-1))
	width := 1
	if idx := pos.Column - 1; idx >= 0 && idx < len(runes) {
		width = max(1, utf16.RuneLen(runes[idx]))
	}
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": character,
			},
			"end": map[string]any{
				"line":      line,
				"character": character + width,
			},
		},
		"severity": severity,
		"source":   "bf-lsp",
		"message":  message,
	}
}

func completionItems() []map[string]any {
	items := make([]map[string]any, 0, len(instructionDocs))
	for _, inst := range instructionDocs {
		items = append(items, map[string]any{
			"label":  string(rune(inst.symbol)),
			"kind":   14, // Keyword
			"detail": inst.doc,
		})
	}
	return items
}

// instructionAt returns hover text for the instruction under the cursor, or
// the one just before it when the cursor sits at the end of a run. character
// is in UTF-16 code units.
func instructionAt(source string, line, character int) (string, bool) {
	runes, ok := lineRunes(source, line)
	if !ok {
		return "", false
	}
	cursor := runeIndex(runes, character)
	for _, idx := range []int{cursor, cursor - 1} {
		if idx < 0 || idx >= len(runes) {
			continue
		}
		for _, inst := range instructionDocs {
			if runes[idx] == rune(inst.symbol) {
				return fmt.Sprintf("`%c`\n\n%s", runes[idx], inst.doc), true
			}
		}
	}
	return "", false
}

func lineRunes(source string, line int) ([]rune, bool) {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return nil, false
	}
	return []rune(strings.TrimRight(lines[line], "\r")), true
}

func utf16Column(runes []rune, runeCol int) int {
	units := 0
	for _, r := range runes[:min(runeCol, len(runes))] {
		units += max(1, utf16.RuneLen(r))
	}
	if runeCol > len(runes) {
		units += runeCol - len(runes)
	}
	return units
}

func runeIndex(runes []rune, character int) int {
	units := 0
	for i, r := range runes {
		if units >= character {
			return i
		}
		units += max(1, utf16.RuneLen(r))
	}
	return len(runes) + max(0, character-units)
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
