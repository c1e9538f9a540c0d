package catalog

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// Query skeletons live next to the descriptors as <name>.rq files. Parameter
// values are substituted one-to-one; they are already canonical per the
// params validators, so no escaping happens here.

//go:embed queries/*.rq
var queryFS embed.FS

var queryTemplates = template.Must(template.ParseFS(queryFS, "queries/*.rq"))

// Render fills the instance's query skeleton with its validated values.
func (ins *Instance) Render() (string, error) {
	var sb strings.Builder
	name := ins.Descriptor.Name + ".rq"
	if err := queryTemplates.ExecuteTemplate(&sb, name, ins.Values); err != nil {
		return "", fmt.Errorf("rendering query %s: %w", ins.Descriptor.Name, err)
	}
	return sb.String(), nil
}
