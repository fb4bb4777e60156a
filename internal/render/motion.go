package render

import "strings"

// motionTags are the animation-wrapper elements that generated source may
// use. Each gets an inert stand-in that renders the equivalent plain
// element with zero motion.
var motionTags = []string{
	"div", "section", "button", "a", "span", "p",
	"h1", "h2", "h3", "h4", "h5", "h6",
}

// motionProps are the animation-only props stripped before rendering; all
// other props and children pass through unchanged.
var motionProps = []string{
	"initial", "animate", "whileInView", "whileHover",
	"variants", "viewport", "transition", "onViewportEnter",
}

// MotionTags returns the wrapped tag names, in definition order.
func MotionTags() []string {
	out := make([]string, len(motionTags))
	copy(out, motionTags)
	return out
}

// StrippedMotionProps returns the prop names the shim discards.
func StrippedMotionProps() []string {
	out := make([]string, len(motionProps))
	copy(out, motionProps)
	return out
}

// motionScript emits the in-sandbox animation shim: a `motion` namespace
// whose members forward to plain elements after dropping the animation
// props, so source written against the animation library executes without
// an undefined symbol.
func motionScript() string {
	var b strings.Builder
	b.WriteString("        const __stripMotionProps = ({ ")
	b.WriteString(strings.Join(motionProps, ", "))
	b.WriteString(`, ...rest }) => rest;
        const __motionTag = (tag) => ({ children, ...props }) =>
            React.createElement(tag, __stripMotionProps(props), children);
        const motion = {
`)
	for _, tag := range motionTags {
		b.WriteString("            ")
		b.WriteString(tag)
		b.WriteString(": __motionTag('")
		b.WriteString(tag)
		b.WriteString("'),\n")
	}
	b.WriteString("        };\n")
	return b.String()
}
