package models

import (
	"fmt"
	"strings"

	json "github.com/alpkeskin/gotoon"
)

// buildDecisionPrompt renders the task state into a single completion
// prompt eliciting a strictly-JSON decision. The grammar here is a
// private detail of the text-level adapters; the engine only ever sees
// the parsed Decision.
func buildDecisionPrompt(req Request) string {
	var sb strings.Builder
	sb.Grow(4096)

	sb.WriteString(strings.TrimSpace(req.Instructions))

	if len(req.Tools) > 0 {
		sb.WriteString("\n\nAvailable tools:\n")
		if rendered, err := json.Encode(req.Tools, json.WithIndent("  ")); err == nil {
			sb.WriteString(rendered)
		} else {
			for _, tool := range req.Tools {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name, tool.Description))
			}
		}
		sb.WriteString("\n")
	}

	if len(req.Steps) > 0 {
		sb.WriteString("\nPrevious steps:\n")
		for i, step := range req.Steps {
			sb.WriteString(fmt.Sprintf("%d. Thought: %s\n   Observation: %s\n", i+1, step.Reasoning, step.Observation))
		}
	}

	sb.WriteString("\nTask:\n")
	sb.WriteString(strings.TrimSpace(req.Prompt))

	sb.WriteString("\n\nRespond with exactly one JSON object and nothing else.\n")
	sb.WriteString(`To finish: {"action": "finish", "answer": "...", "reasoning": "..."}` + "\n")
	sb.WriteString(`To call a tool: {"action": "invoke", "tool": "<name>", "arguments": {"<param>": "<text value>"}, "reasoning": "..."}` + "\n")
	sb.WriteString("Array parameters take a JSON array as the text value.\n")
	return sb.String()
}

type decisionWire struct {
	Action    string            `json:"action"`
	Answer    string            `json:"answer"`
	Tool      string            `json:"tool"`
	Arguments map[string]string `json:"arguments"`
	Reasoning string            `json:"reasoning"`
}

// parseDecision extracts the first JSON object from raw model output
// and maps it onto a Decision. An explicit finish action is
// authoritative even when tool fields are also present; output that
// names no recognizable action stays DecisionUnknown so the caller can
// reject it instead of guessing.
func parseDecision(output string) (Decision, error) {
	payload, err := firstJSONObject(output)
	if err != nil {
		return Decision{}, err
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Decision{}, fmt.Errorf("decision is not valid JSON: %w", err)
	}

	d := Decision{
		Answer:    strings.TrimSpace(wire.Answer),
		Tool:      strings.TrimSpace(wire.Tool),
		Arguments: wire.Arguments,
		Reasoning: strings.TrimSpace(wire.Reasoning),
	}

	switch strings.ToLower(strings.TrimSpace(wire.Action)) {
	case "finish", "final", "final_answer", "done":
		d.Kind = DecisionFinish
	case "invoke", "tool", "call", "tool_call":
		d.Kind = DecisionInvoke
	default:
		d.Kind = DecisionUnknown
	}
	return d, nil
}

// firstJSONObject returns the first balanced {...} block, skipping any
// prose the model wrapped around it.
func firstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object in model output")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in model output")
}
