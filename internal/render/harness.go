package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"text/template"
)

// Version-pinned addresses of the three runtime dependencies the harness
// loads: the component runtime, the in-browser transpiler and the
// icon-drawing library, plus the styling CDN the generated source assumes.
const (
	tailwindCDN = "https://cdn.tailwindcss.com"
	reactCDN    = "https://unpkg.com/react@18/umd/react.production.min.js"
	reactDOMCDN = "https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"
	babelCDN    = "https://unpkg.com/@babel/standalone@7.24.7/babel.min.js"
	lucideCDN   = "https://unpkg.com/lucide@0.460.0"
)

// componentCandidates is the ordered list of conventional top-level
// component names the epilogue mounts, highest priority first. When the
// sanitized source defines more than one, the first match wins; when it
// defines none, DefaultComponent is mounted and any failure stays inside
// the sandbox.
var componentCandidates = []string{
	"BusinessWebsite", "Website", "App", "Site", "Home",
}

const DefaultComponent = "BusinessWebsite"

// SelectComponent scans sanitized source for top-level definitions of the
// candidate names (function, class, or const/let/var binding) and returns
// the highest-priority one present, falling back to DefaultComponent.
func SelectComponent(sanitized string) string {
	for _, name := range componentCandidates {
		if definesComponent(sanitized, name) {
			return name
		}
	}
	return DefaultComponent
}

var definitionRes = map[string]*regexp.Regexp{}

func init() {
	for _, name := range componentCandidates {
		definitionRes[name] = regexp.MustCompile(
			`(?m)^\s*(?:(?:function|class)\s+` + name + `\b|(?:const|let|var)\s+` + name + `\s*=)`)
	}
}

func definesComponent(source, name string) bool {
	re, ok := definitionRes[name]
	if !ok {
		return false
	}
	return re.MatchString(source)
}

var harnessTmpl = template.Must(template.New("harness").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Preview</title>

    <script src="{{.TailwindCDN}}"></script>

    <script crossorigin src="{{.ReactCDN}}"></script>
    <script crossorigin src="{{.ReactDOMCDN}}"></script>

    <script src="{{.BabelCDN}}"></script>

    <script src="{{.LucideCDN}}"></script>

    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: system-ui, -apple-system, sans-serif;
        }
    </style>
</head>
<body>
    <div id="root"></div>

    <script type="text/babel">
        const { useState, useEffect } = React;

{{.IconScript}}
{{.MotionScript}}
{{.Source}}

        const rootElement = document.getElementById('root');
        const root = ReactDOM.createRoot(rootElement);
        root.render(React.createElement({{.Component}}));
    </script>
</body>
</html>
`))

type harnessData struct {
	Title        string
	TailwindCDN  string
	ReactCDN     string
	ReactDOMCDN  string
	BabelCDN     string
	LucideCDN    string
	IconScript   string
	MotionScript string
	Source       string
	Component    string
}

// Assemble builds the complete standalone preview document for sanitized
// generated source: head with the business title, the pinned runtime
// loads, the icon and animation stand-ins, the source verbatim, and a
// mount epilogue instantiating exactly one component. A source that throws
// during evaluation fails inside the sandboxed document only; the caller's
// page is unaffected.
func Assemble(sanitized, businessTitle string) (string, error) {
	var b strings.Builder
	err := harnessTmpl.Execute(&b, harnessData{
		Title:        html.EscapeString(businessTitle),
		TailwindCDN:  tailwindCDN,
		ReactCDN:     reactCDN,
		ReactDOMCDN:  reactDOMCDN,
		BabelCDN:     babelCDN,
		LucideCDN:    lucideCDN,
		IconScript:   iconScript(),
		MotionScript: motionScript(),
		Source:       sanitized,
		Component:    SelectComponent(sanitized),
	})
	if err != nil {
		return "", fmt.Errorf("failed to assemble preview document: %w", err)
	}
	return b.String(), nil
}
