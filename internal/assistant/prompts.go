package assistant

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// render loads a prompt template and substitutes {{KEY}} placeholders.
// pairs alternate placeholder name and value, as for strings.NewReplacer.
func render(name string, pairs ...string) (string, error) {
	raw, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{{"+pairs[i]+"}}", pairs[i+1])
	}
	out := strings.NewReplacer(oldnew...).Replace(string(raw))
	return strings.TrimSpace(out), nil
}

func mustRender(name string, pairs ...string) string {
	out, err := render(name, pairs...)
	if err != nil {
		panic(err)
	}
	return out
}
