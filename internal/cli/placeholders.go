package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
)

// Placeholders lists the placeholders each template uses, marking those the
// loaded bindings leave unbound. It returns 3 in strict mode when any
// placeholder is unbound.
func Placeholders(config *Config, paths, assignments []string, strict bool, stdin io.Reader, stdout io.Writer) (int, error) {
	bindings, err := LoadBindings(config, assignments)
	if err != nil {
		return 1, err
	}

	type template struct {
		name    string
		content string
	}
	var templates []template

	if len(paths) == 0 {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return 1, fmt.Errorf("failed to read stdin: %w", err)
		}
		templates = append(templates, template{StdinName, string(content)})
	} else {
		files, err := discovery.Resolve(paths)
		if err != nil {
			return 1, fmt.Errorf("failed to discover templates: %w", err)
		}
		for _, f := range files {
			content, err := os.ReadFile(f.Path)
			if err != nil {
				return 1, fmt.Errorf("failed to read %s: %w", f.RelativePath, err)
			}
			templates = append(templates, template{f.RelativePath, string(content)})
		}
	}

	unbound := 0
	for _, t := range templates {
		names := pgsubst.Placeholders(t.content)
		missing := pgsubst.Missing(t.content, bindings)
		unbound += len(missing)

		if len(names) == 0 {
			fmt.Fprintf(stdout, "%s: (none)\n", t.name)
			continue
		}
		fmt.Fprintf(stdout, "%s: %s\n", t.name, strings.Join(names, ", "))
		if len(missing) > 0 {
			fmt.Fprintf(stdout, "  unbound: %s\n", strings.Join(missing, ", "))
		}
	}

	if strict && unbound > 0 {
		return 3, nil
	}
	return 0, nil
}
