// Package uigen drives an agent that builds small React projects inside an in-memory workspace.
//
// A LanguageModel streams prose and tool calls one step at a time; an Agent executes the calls
// against a ToolServer and feeds the results back until the model stops. The vfs package holds
// the workspace, the tools package exposes it as the str_replace_editor and file_manager tools,
// and models/mock provides a deterministic model that needs no network. SSEServer and SSEClient
// carry agent runs over HTTP as Server-Sent Events.
package uigen
