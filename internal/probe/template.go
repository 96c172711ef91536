package probe

import (
	"bytes"
	"math/rand"
	"strings"
	"text/template"

	"github.com/google/uuid"
)

// PayloadTemplate expands per-attempt placeholders in a probe payload.
// Static payloads never pass through here; callers check HasTemplate
// first so the common case stays allocation-free.
type PayloadTemplate struct {
	tmpl *template.Template
}

// payloadData is the execution context for one attempt.
type payloadData struct {
	Seq  int
	UUID string
}

// HasTemplate reports whether the payload needs per-attempt expansion.
func HasTemplate(payload string) bool {
	return strings.Contains(payload, "{{")
}

// ParsePayload compiles a payload template. Supported placeholders:
// {{uuid}}, {{seq}}, {{randomInt min max}} and {{randomChoice "a" "b"}}.
func ParsePayload(payload string) (*PayloadTemplate, error) {
	funcs := template.FuncMap{
		"randomInt": func(min, max int) int {
			return rand.Intn(max-min) + min
		},
		"randomChoice": func(choices ...string) string {
			if len(choices) == 0 {
				return ""
			}
			return choices[rand.Intn(len(choices))]
		},
	}

	t, err := template.New("payload").Funcs(funcs).Parse(preprocess(payload))
	if err != nil {
		return nil, Configf("invalid payload template: %v", err)
	}
	return &PayloadTemplate{tmpl: t}, nil
}

// preprocess converts "naked" variables to dot-notation for struct
// access, so users can write {{uuid}} instead of {{.UUID}}.
func preprocess(input string) string {
	s := strings.ReplaceAll(input, "{{uuid}}", "{{.UUID}}")
	s = strings.ReplaceAll(s, "{{seq}}", "{{.Seq}}")
	return s
}

// Render produces the payload for one attempt. A fresh UUID is drawn
// per call.
func (p *PayloadTemplate) Render(seq int) (string, error) {
	var buf bytes.Buffer
	data := payloadData{Seq: seq, UUID: uuid.New().String()}
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
