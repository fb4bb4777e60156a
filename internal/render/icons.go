package render

import (
	"strings"

	"elevare.io/sitegen/internal/logger"
)

// knownIcons is the export surface of the icon library that generated
// source is allowed to reference. The harness defines one component
// stand-in per name; names outside the table resolve through a generic
// fallback instead of failing.
var knownIcons = []string{
	// Contact & social
	"Phone", "Mail", "MapPin", "MessageCircle", "Facebook", "Twitter",
	"Instagram", "Linkedin", "Youtube",
	// UI & navigation
	"Menu", "X", "Check", "CheckCircle", "ChevronRight", "ChevronDown",
	"ChevronUp", "ChevronLeft", "ArrowRight", "ArrowLeft", "ExternalLink",
	"Info", "AlertCircle",
	// Time & calendar
	"Clock", "Calendar",
	// People
	"Users", "User", "UserCheck",
	// Ratings & achievement
	"Star", "Award", "Trophy", "Target", "Medal",
	// Food & beverage
	"ChefHat", "Pizza", "Utensils", "Coffee", "Wine", "Cookie", "IceCream",
	"Soup", "Salad", "Sandwich", "Croissant", "CakeSlice", "Beer", "Martini",
	// Medical & health
	"Stethoscope", "Activity", "Heart", "HeartPulse", "Shield", "Pill",
	"Syringe", "Thermometer", "Cross",
	// Fitness & sports
	"Dumbbell", "Bike", "Flame", "Timer", "Footprints",
	// Business & commerce
	"Briefcase", "Building", "Building2", "Store", "ShoppingBag",
	"ShoppingCart", "CreditCard", "DollarSign", "Receipt", "Tag", "Bed",
	"Banknote", "Percent",
	// Services & tools
	"Wrench", "Hammer", "Scissors", "Paintbrush", "PaintBucket", "Car",
	"Home", "Key", "Zap", "Settings", "Drill", "Truck",
	// Beauty & wellness
	"Sparkles", "Smile", "Eye", "Palette", "Brush", "Gem", "Crown",
	// Education & learning
	"Book", "BookOpen", "GraduationCap", "Pencil", "Backpack",
	// Technology
	"Laptop", "Smartphone", "Wifi", "Globe", "Monitor", "Headphones",
	"Camera", "Video", "Mic",
	// Nature & environment
	"Leaf", "Trees", "Sun", "Moon", "Flower", "Mountain", "Umbrella",
	"Snowflake", "Droplet", "CloudRain",
	// Entertainment
	"Music", "Film", "Tv", "Gamepad2",
	// Transportation
	"Plane", "Train", "Bus", "Ship", "Anchor", "Navigation", "Compass", "Map",
	// Animals & family
	"Baby", "Dog", "Cat", "Fish", "Bird", "PawPrint",
	// Legal & misc
	"Scale", "Gavel", "Gift", "Package", "Image", "Lightbulb", "Glasses",
	"Shirt", "Watch", "Lock",
}

var knownIconSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(knownIcons))
	for _, name := range knownIcons {
		m[name] = struct{}{}
	}
	return m
}()

// Icon is the resolved stand-in for one icon reference.
type Icon struct {
	Name  string // PascalCase name as defined in the harness
	Known bool   // false means the generic fallback element is used
}

// Element returns the markup the harness would produce for this icon
// before the icon library fills it in: an inline marker element.
func (i Icon) Element() string {
	return `<i data-icon="` + i.Name + `"></i>`
}

type IconResolver struct {
	log logger.Logger
}

func NewIconResolver(log logger.Logger) *IconResolver {
	return &IconResolver{log: log}
}

// Resolve maps an icon name in kebab-case or PascalCase to its harness
// stand-in. Unknown names resolve to the generic fallback and log a
// warning; resolution never fails.
func (r *IconResolver) Resolve(name string) Icon {
	pascal := PascalCase(name)
	if _, ok := knownIconSet[pascal]; ok {
		return Icon{Name: pascal, Known: true}
	}
	r.log.Warn("unknown icon name, using generic fallback", map[string]interface{}{
		"icon": name,
	})
	return Icon{Name: pascal, Known: false}
}

// PascalCase converts a kebab-case icon name ("map-pin") to the
// PascalCase form the icon library exports ("MapPin"). Names already in
// PascalCase pass through unchanged.
func PascalCase(name string) string {
	if !strings.Contains(name, "-") {
		if name == "" {
			return name
		}
		return strings.ToUpper(name[:1]) + name[1:]
	}
	parts := strings.Split(name, "-")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// iconScript emits the in-sandbox definition block: a factory that draws
// via the host icon library once it is available, one component per known
// name, and a generic indirection for anything else. The factory's mount
// effect re-runs so icons render even when the library loads after first
// paint; a missing icon degrades to the empty marker element with a
// console warning instead of throwing.
func iconScript() string {
	var b strings.Builder
	b.WriteString(`        const createIcon = (iconName) => {
            return (props) => {
                const ref = React.useRef();
                React.useEffect(() => {
                    if (!ref.current || !window.lucide) {
                        return;
                    }
                    const icon = window.lucide[iconName];
                    if (!icon) {
                        console.warn('icon not found: ' + iconName);
                        return;
                    }
                    ref.current.innerHTML = '';
                    const el = window.lucide.createElement(icon);
                    el.setAttribute('stroke-width', props.strokeWidth || 2);
                    ref.current.appendChild(el);
                });
                return React.createElement('i', {
                    ref,
                    'data-icon': iconName,
                    className: props.className,
                    style: { display: 'inline-block', width: '1em', height: '1em' }
                });
            };
        };
        const __icon = (name) => createIcon(name);
`)
	for _, name := range knownIcons {
		b.WriteString("        const ")
		b.WriteString(name)
		b.WriteString(" = createIcon('")
		b.WriteString(name)
		b.WriteString("');\n")
	}
	return b.String()
}
