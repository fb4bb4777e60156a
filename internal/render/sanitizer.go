package render

import "regexp"

// The generated source is written against three host modules that the
// preview harness provides in-document instead: the component runtime, the
// icon set and the animation set. Import lines naming any of them must be
// stripped before the source can run as a free-standing script; imports of
// any other module are left alone and will fail inside the sandbox, which
// is the intended failure domain.
const (
	RuntimeModule   = "react"
	IconModule      = "lucide-react"
	AnimationModule = "framer-motion"
)

var (
	// Matches a whole import statement line, default or named syntax,
	// including the side-effect-only form `import 'react';`. The module
	// name is matched exactly and case-sensitively.
	hostImportRe = regexp.MustCompile(
		`(?m)^[ \t]*import\s+(?:[^'"\r\n]*?\s+from\s+)?['"](?:` +
			RuntimeModule + `|` + IconModule + `|` + AnimationModule +
			`)['"];?[ \t]*\r?\n?`)

	exportDefaultRe = regexp.MustCompile(`export\s+default\s+`)
)

// Sanitize strips host-module import statements and `export default`
// markers from machine-generated UI source, leaving the prefixed
// declaration intact and nameable. It is purely textual: no parsing, no
// validation of the remainder. Sanitizing already-sanitized source is a
// no-op.
func Sanitize(raw string) string {
	out := hostImportRe.ReplaceAllString(raw, "")
	out = exportDefaultRe.ReplaceAllString(out, "")
	return out
}
