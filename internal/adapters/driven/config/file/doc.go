// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.paperpilot.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - WorkspaceStore: JSON research workspaces with YAML export
package file
