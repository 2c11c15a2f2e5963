package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keshon/server-banker/internal/event"
	"github.com/keshon/server-banker/internal/respond"
	"github.com/keshon/server-banker/internal/store"
)

// SendCommandInput is the MCP tool input for issuing a bot command.
type SendCommandInput struct {
	Channel string `json:"channel,omitempty" jsonschema:"channel to attribute the command to"`
	User    string `json:"user" jsonschema:"user issuing the command"`
	Input   string `json:"input" jsonschema:"command text, e.g. 'echo hello'"`
}

// SendCommandResult is the MCP tool output for issuing a bot command.
type SendCommandResult struct {
	Success bool   `json:"success" jsonschema:"whether the command succeeded"`
	Text    string `json:"text" jsonschema:"human-readable reply"`
	Error   string `json:"error,omitempty" jsonschema:"error kind when the command failed"`
}

func sendCommandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "send_command",
		Description: "Issues a chat command to the bot and returns its reply",
	}
}

func (s *Server) sendCommandHandler() mcp.ToolHandlerFor[SendCommandInput, SendCommandResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SendCommandInput) (*mcp.CallToolResult, SendCommandResult, error) {
		ev, err := event.Normalize(event.Payload{
			ServerID:  s.serverID,
			ChannelID: input.Channel,
			UserID:    input.User,
			RawInput:  input.Input,
		}, event.TypeCommand, event.SourceTool)
		if err != nil {
			return nil, SendCommandResult{}, err
		}

		env := respond.Format(s.dispatcher.Dispatch(ctx, ev))
		return nil, SendCommandResult{Success: env.Success, Text: env.Text, Error: env.ErrorKind}, nil
	}
}

// GetBalanceInput is the MCP tool input for a balance query.
type GetBalanceInput struct {
	User string `json:"user" jsonschema:"user to look up"`
}

// GetBalanceResult is the MCP tool output for a balance query.
type GetBalanceResult struct {
	User    string `json:"user" jsonschema:"user that was looked up"`
	Balance int64  `json:"balance" jsonschema:"current coin balance"`
}

func getBalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_balance",
		Description: "Returns a user's coin balance",
	}
}

func (s *Server) getBalanceHandler() mcp.ToolHandlerFor[GetBalanceInput, GetBalanceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetBalanceInput) (*mcp.CallToolResult, GetBalanceResult, error) {
		bal, err := s.ledger.Balance(ctx, s.serverID, input.User)
		if err != nil {
			return nil, GetBalanceResult{}, err
		}
		return nil, GetBalanceResult{User: input.User, Balance: bal}, nil
	}
}

// ListInventoryInput is the MCP tool input for an inventory listing.
type ListInventoryInput struct {
	User string `json:"user" jsonschema:"user whose inventory to list"`
}

// ListInventoryResult is the MCP tool output for an inventory listing.
type ListInventoryResult struct {
	User  string       `json:"user" jsonschema:"user whose inventory was listed"`
	Items []store.Item `json:"items" jsonschema:"items the user owns, ordered by item id"`
}

func listInventoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_inventory",
		Description: "Lists the items a user owns",
	}
}

func (s *Server) listInventoryHandler() mcp.ToolHandlerFor[ListInventoryInput, ListInventoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListInventoryInput) (*mcp.CallToolResult, ListInventoryResult, error) {
		items, err := s.ledger.Inventory(ctx, s.serverID, input.User)
		if err != nil {
			return nil, ListInventoryResult{}, err
		}
		return nil, ListInventoryResult{User: input.User, Items: items}, nil
	}
}
