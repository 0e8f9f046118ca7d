// Package tools exposes the reminder engine as MCP tools over stdio.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// Scheduler registers and withdraws notification triggers.
type Scheduler interface {
	engine.Scheduler
	CancelSlot(ctx context.Context, id, slot string) (int, error)
}

// Server is the MCP server for medicine reminders.
type Server struct {
	mcpServer *server.MCPServer

	store     *engine.Store
	projector *engine.Projector
	compiler  *engine.Compiler
	scheduler Scheduler
	clock     engine.Clock

	handlers map[string]server.ToolHandlerFunc
}

// NewServer wires the tools. A nil scheduler stores reminders without scheduling them.
func NewServer(store *engine.Store, compiler *engine.Compiler, scheduler Scheduler, clock engine.Clock) *Server {
	s := &Server{
		store:     store,
		projector: &engine.Projector{Store: store},
		compiler:  compiler,
		scheduler: scheduler,
		clock:     clock,
		handlers:  make(map[string]server.ToolHandlerFunc),
	}

	s.mcpServer = server.NewMCPServer(
		config.MCPServerName,
		config.ToolVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Call invokes a registered tool in-process, bypassing the transport.
func (s *Server) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, ok := s.handlers[req.Params.Name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrUnknown, req.Params.Name)), nil
	}
	return h(ctx, req)
}

func (s *Server) addTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.handlers[tool.Name] = h
	s.mcpServer.AddTool(tool, h)
}

func (s *Server) registerTools() {
	s.addTool(
		mcp.NewTool(config.ToolAddReminder,
			mcp.WithDescription(config.ToolDescAdd),
			mcp.WithString(config.ArgMedicineName, mcp.Required(), mcp.Description(config.ArgDescName)),
			mcp.WithString(config.ArgTimes, mcp.Required(), mcp.Description(config.ArgDescTimes)),
			mcp.WithString(config.ArgDays, mcp.Description(config.ArgDescDays)),
			mcp.WithString(config.ArgType, mcp.Description(config.ArgDescType)),
			mcp.WithString(config.ArgUnits, mcp.Description(config.ArgDescUnits)),
			mcp.WithString(config.ArgUnitType, mcp.Description(config.ArgDescUnitType)),
			mcp.WithString(config.ArgColor, mcp.Description(config.ArgDescColor)),
			mcp.WithString(config.ArgWhen, mcp.Description(config.ArgDescWhen)),
			mcp.WithString(config.ArgStartDate, mcp.Description(config.ArgDescStartDate)),
			mcp.WithString(config.ArgEndDate, mcp.Description(config.ArgDescEndDate)),
			mcp.WithString(config.ArgDescription, mcp.Description(config.ArgDescDescription)),
		),
		s.handleAdd,
	)

	s.addTool(
		mcp.NewTool(config.ToolListReminders,
			mcp.WithDescription(config.ToolDescList),
		),
		s.handleList,
	)

	s.addTool(
		mcp.NewTool(config.ToolTodayAgenda,
			mcp.WithDescription(config.ToolDescAgenda),
			mcp.WithString(config.ArgDate, mcp.Description(config.ArgDescDate)),
		),
		s.handleAgenda,
	)

	s.addTool(
		mcp.NewTool(config.ToolDeleteTime,
			mcp.WithDescription(config.ToolDescDelete),
			mcp.WithString(config.ArgTime, mcp.Required(), mcp.Description(config.ArgDescTime)),
			mcp.WithString(config.ArgID, mcp.Description(config.ArgDescID)),
			mcp.WithString(config.ArgMedicineName, mcp.Description(config.ArgDescName)),
			mcp.WithString(config.ArgWhen, mcp.Description(config.ArgDescWhen)),
			mcp.WithString(config.ArgStartDate, mcp.Description(config.ArgDescStartDate)),
		),
		s.handleDelete,
	)

	s.addTool(
		mcp.NewTool(config.ToolCompile,
			mcp.WithDescription(config.ToolDescCompile),
			mcp.WithString(config.ArgID, mcp.Required(), mcp.Description(config.ArgDescID)),
		),
		s.handleCompile,
	)
}

// addResult is the reply of add_reminder.
type addResult struct {
	Reminder  engine.ReminderRecord `json:"reminder"`
	Scheduled int                   `json:"scheduled"`
	Errors    string                `json:"errors,omitempty"`
}

func (s *Server) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString(config.ArgMedicineName, "")
	if name == "" {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrRequired, config.ArgMedicineName)), nil
	}

	days := splitList(req.GetString(config.ArgDays, ""))
	record := engine.ReminderRecord{
		MedicineName: name,
		Type:         req.GetString(config.ArgType, ""),
		Units:        req.GetString(config.ArgUnits, ""),
		UnitType:     req.GetString(config.ArgUnitType, ""),
		Color:        req.GetString(config.ArgColor, ""),
		When:         req.GetString(config.ArgWhen, ""),
		StartDate:    engine.Date(req.GetString(config.ArgStartDate, "")),
		EndDate:      engine.Date(req.GetString(config.ArgEndDate, "")),
		Times:        splitList(req.GetString(config.ArgTimes, "")),
		Description:  req.GetString(config.ArgDescription, ""),
	}
	for _, d := range days {
		record.SelectedDays = append(record.SelectedDays, engine.DayName(d))
	}

	added, err := s.store.Append(ctx, record)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrFailed, config.ToolAddReminder, err)), nil
	}

	res := addResult{Reminder: added}
	if s.scheduler != nil {
		n, err := s.compiler.Register(ctx, added, s.scheduler)
		res.Scheduled = n
		if err != nil {
			res.Errors = err.Error()
		}
	}
	return jsonResult(res)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrFailed, config.ToolListReminders, err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText(config.ToolMsgNoReminders), nil
	}
	return jsonResult(records)
}

// agendaRow is one line of today_agenda.
type agendaRow struct {
	Index        int    `json:"index"`
	ID           string `json:"id,omitempty"`
	Time         string `json:"time"`
	MedicineName string `json:"medicineName"`
	Units        string `json:"units,omitempty"`
	UnitType     string `json:"unitType,omitempty"`
	When         string `json:"when,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
}

func (s *Server) handleAgenda(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	today, name := engine.Today(s.clock)
	if raw := req.GetString(config.ArgDate, ""); raw != "" {
		t, err := engine.Date(raw).Time(s.clock.Now().Location())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		today, name = engine.DateOf(t), engine.DayNameOf(t.Weekday())
	}

	entries, err := s.projector.Project(ctx, today, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrFailed, config.ToolTodayAgenda, err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(config.ToolMsgNoAgenda), nil
	}

	rows := make([]agendaRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, agendaRow{
			Index:        e.Index,
			ID:           e.Record.ID,
			Time:         e.Time(),
			MedicineName: e.Record.MedicineName,
			Units:        e.Record.Units,
			UnitType:     e.Record.UnitType,
			When:         e.Record.When,
			StartDate:    string(e.Record.StartDate),
		})
	}
	return jsonResult(rows)
}

// deleteResult is the reply of delete_reminder_time.
type deleteResult struct {
	Outcome  string `json:"outcome"`
	Canceled int    `json:"canceledTriggers"`
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot := req.GetString(config.ArgTime, "")
	if slot == "" {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrRequired, config.ArgTime)), nil
	}

	id := req.GetString(config.ArgID, "")
	name := req.GetString(config.ArgMedicineName, "")

	var (
		outcome engine.DeleteOutcome
		err     error
	)
	switch {
	case id != "":
		outcome, err = s.store.RemoveTimeByID(ctx, id, slot)
		if outcome == engine.NotFound {
			id = ""
		}
	case name != "":
		key := engine.MatchKey{
			MedicineName: name,
			When:         req.GetString(config.ArgWhen, ""),
			StartDate:    engine.Date(req.GetString(config.ArgStartDate, "")),
		}
		id, outcome, err = s.store.RemoveTimeByKey(ctx, key, slot)
	default:
		return mcp.NewToolResultError(config.ToolErrArgs), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrFailed, config.ToolDeleteTime, err)), nil
	}

	res := deleteResult{Outcome: outcome.String()}
	if id != "" && s.scheduler != nil {
		n, err := s.scheduler.CancelSlot(ctx, id, slot)
		if err != nil {
			slog.Warn(config.ErrStorage,
				config.LogKeyComponent, config.CompTools,
				config.LogKeyID, id,
				config.LogKeyError, err)
		}
		res.Canceled = n
	}
	return jsonResult(res)
}

func (s *Server) handleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString(config.ArgID, "")
	if id == "" {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrRequired, config.ArgID)), nil
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ToolErrFailed, config.ToolCompile, err)), nil
	}
	return jsonResult(s.compiler.Compile(record))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", config.JSONIndent)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(output)), nil
}

// splitList splits a comma-separated argument, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, config.ListSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
