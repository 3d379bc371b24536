package extract

import (
	"fmt"
	"strings"
)

// Temperature keeps extraction output close to deterministic.
const Temperature = 0.1

// SystemPrompt fixes the output contract for every extraction call.
const SystemPrompt = `You are a data extraction expert. Extract structured information from the given text. ` +
	`Return ONLY a valid JSON object containing the requested fields. ` +
	`The response MUST be in this exact format, with no additional text: ` +
	`{"listings": [{"field1": "value1", "field2": "value2"}, ...]} ` +
	`Each listing must include all requested fields. Use an empty string if a field is not found. ` +
	`Ensure all quotes are double quotes and there are no trailing commas.`

// BuildUserPrompt names the requested fields and embeds the chunk text.
func BuildUserPrompt(fields []string, text string) string {
	shape := make([]string, len(fields))
	for i, f := range fields {
		shape[i] = fmt.Sprintf("%q: \"\"", f)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract these fields from the text: %s.\n", strings.Join(fields, ", "))
	fmt.Fprintf(&sb, "Return as JSON with format {\"listings\": [{%s}]}.\n", strings.Join(shape, ", "))
	sb.WriteString("Content:\n")
	sb.WriteString(text)
	return sb.String()
}
