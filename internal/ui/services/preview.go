package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/security"
)

// FormatToolDescription generates a user-friendly description from the raw
// JSON arguments of a tool call.
func FormatToolDescription(name, rawArgs string) string {
	var args map[string]any
	_ = json.Unmarshal([]byte(rawArgs), &args)

	str := func(key string) (string, bool) {
		v, ok := args[key].(string)
		return v, ok && v != ""
	}

	switch name {
	case "shell":
		if cmd, ok := str("command"); ok {
			return fmt.Sprintf("Shell '%s'", cmd)
		}
	case "file_read":
		if path, ok := str("path"); ok {
			return "Read " + path
		}
	case "file_write":
		if path, ok := str("path"); ok {
			return "Write " + path
		}
	case "file_edit":
		if path, ok := str("path"); ok {
			return "Edit " + path
		}
	case "file_list":
		if path, ok := str("path"); ok {
			return "List " + path
		}
		return "List ."
	case "memory_store":
		if key, ok := str("key"); ok {
			return "Remember " + key
		}
	case "memory_recall":
		if q, ok := str("query"); ok {
			return fmt.Sprintf("Recall '%s'", q)
		}
	case "memory_forget":
		if key, ok := str("key"); ok {
			return "Forget " + key
		}
	case "screenshot":
		return "Screenshot"
	case "image_info":
		if path, ok := str("path"); ok {
			return "Inspect " + path
		}
	case "browser_open":
		if u, ok := str("url"); ok {
			return "Open " + u
		}
	case "composio":
		if a, ok := str("action_name"); ok {
			return "Composio " + a
		}
		if action, ok := str("action"); ok {
			return "Composio " + action
		}
	}
	return name
}

// RenderApproval renders the body of an approval prompt.
func RenderApproval(req security.ApprovalRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$ %s\n\n", req.Command)
	fmt.Fprintf(&sb, "Tool: %s\n", req.Tool)
	fmt.Fprintf(&sb, "Risk: %s\n", req.Risk)
	if req.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", req.Reason)
	}
	return sb.String()
}
