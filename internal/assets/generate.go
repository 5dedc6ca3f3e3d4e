package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Manifest is the document clients poll to learn the latest deployed version.
type Manifest struct {
	Version string `json:"version"`
	Silence bool   `json:"silence"`
}

// ScriptOptions are serialized into the setup call of the generated script.
type ScriptOptions struct {
	InjectFileBase            string
	HiddenDefaultNotification bool
	CustomNotificationHTML    string
	// Extra carries pass-through options consumed only by the client script.
	Extra map[string]any
}

// GenerateManifest renders the manifest JSON.
func GenerateManifest(version string, silence bool) string {
	// Marshal of a struct of a string and a bool cannot fail.
	data, _ := json.Marshal(Manifest{Version: version, Silence: silence})
	return string(data)
}

// GenerateScript renders the client script: the template source, the version
// assignment and the setup call with opts.
func GenerateScript(templateSource, version string, opts ScriptOptions) (string, error) {
	optsJSON, err := opts.marshal()
	if err != nil {
		return "", fmt.Errorf("encode script options: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(templateSource)
	if templateSource != "" && templateSource[len(templateSource)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(VersionAssignment(version))
	b.WriteByte('\n')
	b.WriteString("window.__checkUpdateSetup__(")
	b.Write(optsJSON)
	b.WriteString(");\n")
	return b.String(), nil
}

// GenerateStyle returns the stylesheet template unchanged.
func GenerateStyle(templateSource string) string {
	return templateSource
}

// marshal produces deterministic JSON: map keys are sorted and the known
// options override same-named Extra keys.
func (o ScriptOptions) marshal() ([]byte, error) {
	merged := make(map[string]any, len(o.Extra)+3)
	for k, v := range o.Extra {
		merged[k] = v
	}
	merged["injectFileBase"] = o.InjectFileBase
	merged["hiddenDefaultNotification"] = o.HiddenDefaultNotification
	if o.CustomNotificationHTML != "" {
		merged["customNotificationHTML"] = o.CustomNotificationHTML
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(merged); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
