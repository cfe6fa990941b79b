package pkg

import (
	"bytes"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"

	"postforge/pkg/models"
)

func promptFuncsMap() template.FuncMap {
	tplFuncs := make(template.FuncMap)

	// Add all Sprig functions
	for key, fn := range sprig.TxtFuncMap() {
		tplFuncs[key] = fn
	}

	// Own functions
	tplFuncs["cleanNewLines"] = tplCleanNewLines
	tplFuncs["wordTarget"] = tplWordTarget

	return tplFuncs
}

var regexNewLines = regexp.MustCompile(`\n\n+`)

func tplCleanNewLines(str string) string {
	return regexNewLines.ReplaceAllString(str, "\n\n")
}

// Approximate word counts fed to the generation prompt.
func tplWordTarget(length models.PostLength) int {
	switch length {
	case models.PostLengthShort:
		return 500
	case models.PostLengthLong:
		return 1800
	}
	return 1000
}

func executeTextTemplate(tpl *template.Template, args interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, args); err != nil {
		return "", errors.WithMessagef(err, "failed to execute template %s", tpl.Name())
	}
	return buf.String(), nil
}

type PostPromptData struct {
	AgentName       string
	Expertise       string
	Persona         string
	Tone            string
	PostLength      models.PostLength
	TargetKeywords  []string
	ExcludeKeywords []string
}

const postPromptText = `{{- if .Persona }}{{ .Persona }}

{{ end -}}
Write a complete blog post as {{ .AgentName }}{{ if .Expertise }}, an expert in {{ .Expertise }}{{ end }}.
Tone: {{ .Tone | default "professional" }}. Target length: about {{ wordTarget .PostLength }} words.
{{- if .TargetKeywords }}
Work these SEO keywords naturally into the post: {{ join ", " .TargetKeywords }}.
{{- end }}
{{- if .ExcludeKeywords }}
Do NOT mention any of: {{ join ", " .ExcludeKeywords }}.
{{- end }}

Return ONLY a valid JSON object with exactly these keys:
- "title": the post title (50-80 chars)
- "content": the full post body in Markdown
- "target_keyword": the primary SEO keyword of the post (2-4 words)

Return ONLY the JSON object, no other text.`

type TopicPromptData struct {
	Expertise      string
	Tone           string
	Persona        string
	Count          int
	ExistingTitles []string
}

const topicPromptText = `You are a content strategist for an ecommerce/business blog.

Agent expertise: {{ .Expertise }}
Agent tone: {{ .Tone }}
{{- if .Persona }}
Agent persona: {{ .Persona }}
{{- end }}

Already published posts (avoid similar topics):
{{- if .ExistingTitles }}
{{- range .ExistingTitles }}
- {{ . }}
{{- end }}
{{- else }}
No posts yet.
{{- end }}

Generate exactly {{ .Count }} unique, high-value blog topic suggestions that:
1. Target specific long-tail SEO keywords
2. Are relevant to the agent's expertise
3. Would attract organic search traffic
4. Are different from already published posts
5. Are actionable and specific (not generic)

Return ONLY a valid JSON array with exactly {{ .Count }} objects, each having:
- "topic": the article title (50-80 chars)
- "target_keyword": the primary SEO keyword to target (2-4 words)
- "reasoning": brief explanation of why this topic is valuable (1 sentence)

Return ONLY the JSON array, no other text.`

var (
	postPromptTpl  = template.Must(template.New("post").Funcs(promptFuncsMap()).Parse(postPromptText))
	topicPromptTpl = template.Must(template.New("topics").Funcs(promptFuncsMap()).Parse(topicPromptText))
)

func RenderPostPrompt(data *PostPromptData) (string, error) {
	return executeTextTemplate(postPromptTpl, data)
}

func RenderTopicPrompt(data *TopicPromptData) (string, error) {
	return executeTextTemplate(topicPromptTpl, data)
}
